package cli

import (
	"fmt"
	"io"

	"github.com/camuso/kabiparser/internal/config"
	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/kabierr"
	"github.com/camuso/kabiparser/internal/query"
)

// RunQuery executes kabi-query's full sequence against cfg: open and load
// every database cfg.DataFiles names (one backend per line of -f's
// filelist, or the single default datafile when -f was omitted), run the
// mode cfg selected across all of them, and write the rendered result to
// stdout.
func RunQuery(cfg *config.QueryConfig, stdout, stderr io.Writer) error {
	stores := make([]*graph.Store, 0, len(cfg.DataFiles))
	for _, path := range cfg.DataFiles {
		backend, err := openBackend(path, cfg.PureSQLite)
		if err != nil {
			return err
		}
		s, err := backend.Load()
		closeErr := backend.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}
		stores = append(stores, s)
	}

	e := query.New(stores)
	verbose := !cfg.Quiet

	switch cfg.Mode {
	case config.ModeCount:
		n, err := e.Count(cfg.Symbol, cfg.WholeWord)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, n)

	case config.ModeDecl:
		nodes, err := e.Resolve(cfg.Symbol, cfg.WholeWord)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			fmt.Fprintln(stdout, n.Decl)
		}

	case config.ModeExports:
		out, err := e.Exports(cfg.Symbol, cfg.WholeWord, verbose)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, out)

	case config.ModeStruct:
		out, err := e.Affects(cfg.Symbol, cfg.WholeWord, verbose)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, out)

	default:
		return kabierr.New(kabierr.ArgMissing, "no query mode selected")
	}

	return nil
}
