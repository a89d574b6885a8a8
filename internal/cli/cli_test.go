package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuso/kabiparser/internal/build"
	"github.com/camuso/kabiparser/internal/config"
	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/symtree"
)

func intSym() *symtree.Symbol {
	return &symtree.Symbol{Kind: symtree.BaseType, Modifiers: symtree.ModSigned}
}

func ksymtab(name string) *symtree.Symbol {
	return &symtree.Symbol{Ident: "__ksymtab_" + name}
}

// seedDataFile builds one scalar-arg export (int foo(int x)) directly into
// a fresh sqlite datafile at path, the same fixture build_test.go uses,
// bypassing frontend.Parse so these tests don't need real source text.
func seedDataFile(t *testing.T, path string) {
	t.Helper()

	foo := &symtree.Symbol{
		Ident: "foo",
		BaseType: &symtree.Symbol{
			Kind:     symtree.Fn,
			BaseType: intSym(),
			Arguments: []*symtree.Symbol{
				{Ident: "x", BaseType: intSym()},
			},
		},
	}
	tu := &symtree.TranslationUnit{File: "foo.c", Symbols: []*symtree.Symbol{ksymtab("foo"), foo}}

	s := graph.New()
	b := build.New(s)
	b.Build([]*symtree.TranslationUnit{tu})
	require.True(t, b.FoundExport())

	backend, err := openBackend(path, true)
	require.NoError(t, err)
	defer backend.Close()
	require.NoError(t, backend.Save(s))
}

func TestRunQueryCountWholeWord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kabi.db")
	seedDataFile(t, path)

	cfg := &config.QueryConfig{Mode: config.ModeCount, Symbol: "foo", WholeWord: true, DataFiles: []string{path}, PureSQLite: true}
	var stdout, stderr bytes.Buffer
	err := RunQuery(cfg, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "1\n", stdout.String())
}

func TestRunQueryExportsRendersExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kabi.db")
	seedDataFile(t, path)

	cfg := &config.QueryConfig{Mode: config.ModeExports, Symbol: "foo", WholeWord: true, DataFiles: []string{path}, PureSQLite: true}
	var stdout, stderr bytes.Buffer
	err := RunQuery(cfg, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "EXPORTED: int foo")
}

func TestRunQueryNotFoundReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kabi.db")
	seedDataFile(t, path)

	cfg := &config.QueryConfig{Mode: config.ModeCount, Symbol: "bar", WholeWord: true, DataFiles: []string{path}, PureSQLite: true}
	var stdout, stderr bytes.Buffer
	err := RunQuery(cfg, &stdout, &stderr)
	assert.Error(t, err)
}

func TestRunQueryLoadsEveryFilelistEntry(t *testing.T) {
	pathA := filepath.Join(t.TempDir(), "a.db")
	pathB := filepath.Join(t.TempDir(), "b.db")
	seedDataFile(t, pathA)
	seedDataFile(t, pathB)

	cfg := &config.QueryConfig{Mode: config.ModeCount, Symbol: "foo", WholeWord: true, DataFiles: []string{pathA, pathB}, PureSQLite: true}
	var stdout, stderr bytes.Buffer
	err := RunQuery(cfg, &stdout, &stderr)
	require.NoError(t, err)
	// whole-word lookup short-circuits on the first store that has a match
	assert.Equal(t, "1\n", stdout.String())
}
