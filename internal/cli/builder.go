// Package cli runs the two binaries' end-to-end sequences — parse, build,
// persist for kabi-builder; load, query, format for kabi-query — as plain
// sequential calls, not a worker pool: spec §5 runs one file at a time. The
// builder takes its input files in the sorted order fsutil.ExpandArgs
// returns them and writes a single datafile.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/camuso/kabiparser/internal/build"
	"github.com/camuso/kabiparser/internal/config"
	"github.com/camuso/kabiparser/internal/frontend"
	"github.com/camuso/kabiparser/internal/fsutil"
	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/kabierr"
	"github.com/camuso/kabiparser/internal/store"
	"github.com/camuso/kabiparser/internal/symtree"
)

// openBackend picks the cgo or pure-Go sqlite backend per cfg.PureSQLite.
func openBackend(dsn string, pureSQLite bool) (store.Backend, error) {
	if pureSQLite {
		return store.OpenPure(dsn)
	}
	return store.Open(dsn)
}

// RunBuilder executes kabi-builder's full sequence against cfg: parse every
// input file, walk each translation unit into s (fresh, unless --cumulative
// asked to fold onto what's already in the datafile), then persist.
func RunBuilder(ctx context.Context, cfg *config.BuilderConfig, stdout, stderr io.Writer) (foundExport bool, err error) {
	files, err := fsutil.ExpandArgs(cfg.Files)
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		return false, kabierr.New(kabierr.ArgMissing, "no input files matched")
	}

	if cfg.Clean {
		if err := os.Remove(cfg.DataFile); err != nil && !os.IsNotExist(err) {
			return false, kabierr.Wrap(kabierr.IOOpen, "removing "+cfg.DataFile, err)
		}
	}

	backend, err := openBackend(cfg.DataFile, cfg.PureSQLite)
	if err != nil {
		return false, err
	}
	defer backend.Close()

	s := graph.New()
	if cfg.Cumulative {
		existing, err := backend.Load()
		if err != nil {
			return false, err
		}
		s.MergeFrom(existing)
	}

	parser := frontend.New()
	b := build.New(s)

	var units []*symtree.TranslationUnit
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return false, kabierr.Wrap(kabierr.IOOpen, "reading "+path, err)
		}
		tu, err := parser.Parse(ctx, path, src)
		if err != nil {
			return false, kabierr.Wrap(kabierr.IOFormat, "parsing "+path, err)
		}
		units = append(units, tu)
	}

	b.Build(units)

	if err := backend.Save(s); err != nil {
		return false, err
	}

	return b.FoundExport(), nil
}
