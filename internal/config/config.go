// Package config translates parsed CLI flags into the two configuration
// structs both binaries run from: BuilderConfig and QueryConfig.
//
// Grounded on the teacher's internal/config flag-resolution helpers
// (checkCommit's "is this flag set" pattern, resolveTargets' "fall back to
// cwd" default) — adapted from morfx's multi-operation resolution down to
// this module's two simpler, single-purpose configs.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/camuso/kabiparser/internal/fsutil"
	"github.com/camuso/kabiparser/internal/kabierr"
)

// LoadEnv loads a .env file from the current directory if one exists, so
// KABI_DATAFILE / KABI_LIBSQL_AUTH_TOKEN can be set once per checkout. A
// missing .env is not an error — godotenv.Load's own error in that case is
// silently discarded, matching the teacher's test-only usage promoted here
// to a real, always-attempted load.
func LoadEnv() {
	_ = godotenv.Load()
}

// BuilderConfig is kabi-builder's fully-resolved configuration.
type BuilderConfig struct {
	DataFile   string
	Cumulative bool
	Clean      bool
	PureSQLite bool
	Files      []string
}

// FromBuilderFlags resolves fs (already parsed) plus its positional
// arguments into a BuilderConfig.
func FromBuilderFlags(fs *pflag.FlagSet) (*BuilderConfig, error) {
	dataFile, _ := fs.GetString("datafile")
	if dataFile == "" {
		dataFile = os.Getenv("KABI_DATAFILE")
	}
	if dataFile == "" {
		dataFile = "kabi-data.db"
	}

	cumulative, _ := fs.GetBool("cumulative")
	clean, _ := fs.GetBool("clean")
	pureSQLite, _ := fs.GetBool("pure-sqlite")

	if cumulative && clean {
		return nil, kabierr.New(kabierr.ArgConflict, "--cumulative and --clean are mutually exclusive")
	}

	files := fs.Args()
	if len(files) == 0 {
		return nil, kabierr.New(kabierr.ArgMissing, "at least one input file is required")
	}

	return &BuilderConfig{
		DataFile:   dataFile,
		Cumulative: cumulative,
		Clean:      clean,
		PureSQLite: pureSQLite,
		Files:      files,
	}, nil
}

// QueryMode names which of -c/-d/-e/-s was selected.
type QueryMode int

const (
	ModeCount QueryMode = iota
	ModeDecl
	ModeExports
	ModeStruct
)

// QueryConfig is kabi-query's fully-resolved configuration.
type QueryConfig struct {
	Mode       QueryMode
	Symbol     string
	WholeWord  bool
	Quiet      bool
	FileList   string
	DataFiles  []string
	PureSQLite bool
}

// FromQueryFlags resolves fs into a QueryConfig, enforcing that exactly one
// of -c/-d/-e/-s was given. -f/--filelist names a text file listing one
// database path per line (spec §6); every line becomes an entry in
// DataFiles, queried in file order with a first-match short-circuit for
// whole-word lookups (spec §5). Without -f, DataFiles resolves to the
// single default datafile, exactly as before filelists existed.
func FromQueryFlags(fs *pflag.FlagSet) (*QueryConfig, error) {
	type modeFlag struct {
		name string
		mode QueryMode
	}
	flags := []modeFlag{
		{"count", ModeCount},
		{"decl", ModeDecl},
		{"exports", ModeExports},
		{"struct", ModeStruct},
	}

	var selected *modeFlag
	var symbol string
	for i, mf := range flags {
		v, _ := fs.GetString(mf.name)
		if v == "" {
			continue
		}
		if selected != nil {
			return nil, kabierr.New(kabierr.ArgConflict, "-c/-d/-e/-s are mutually exclusive")
		}
		selected = &flags[i]
		symbol = v
	}
	if selected == nil {
		return nil, kabierr.New(kabierr.ArgMissing, "exactly one of -c/-d/-e/-s is required")
	}

	wholeWord, _ := fs.GetBool("whole-word")
	quiet, _ := fs.GetBool("quiet")
	fileList, _ := fs.GetString("filelist")
	pureSQLite, _ := fs.GetBool("pure-sqlite")

	var dataFiles []string
	if fileList != "" {
		lines, err := fsutil.ReadLines(fileList)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			return nil, kabierr.New(kabierr.ArgMissing, "filelist "+fileList+" names no databases")
		}
		dataFiles = lines
	} else {
		dataFile := os.Getenv("KABI_DATAFILE")
		if dataFile == "" {
			dataFile = "kabi-data.db"
		}
		dataFiles = []string{dataFile}
	}

	return &QueryConfig{
		Mode:       selected.mode,
		Symbol:     symbol,
		WholeWord:  wholeWord,
		Quiet:      quiet,
		FileList:   fileList,
		DataFiles:  dataFiles,
		PureSQLite: pureSQLite,
	}, nil
}
