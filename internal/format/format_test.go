package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camuso/kabiparser/internal/graph"
)

func TestTagForDerivesFromFlags(t *testing.T) {
	assert.Equal(t, TagFile, TagFor(graph.FlagFile))
	assert.Equal(t, TagExported, TagFor(graph.FlagExported))
	assert.Equal(t, TagArg, TagFor(graph.FlagArg))
	assert.Equal(t, TagArg, TagFor(graph.FlagReturn))
	assert.Equal(t, TagNested, TagFor(graph.FlagNested))
}

func TestPutRowsFromFrontBasicPrinting(t *testing.T) {
	f := New(true)
	rows := []Row{
		{Level: 0, Flags: graph.FlagFile, Decl: "sample.i"},
		{Level: 1, Flags: graph.FlagExported, Decl: "foo", Name: "foo"},
		{Level: 2, Flags: graph.FlagReturn, Decl: "int"},
		{Level: 2, Flags: graph.FlagArg, Decl: "int", Name: "x"},
	}
	out := f.PutRowsFromFront(rows)
	assert.Equal(t, "FILE: sample.i\n EXPORTED: foo foo\n  RETURN: int \n  ARG: int x\n", out)
}

func TestPutRowsFromBackReversesOrder(t *testing.T) {
	f := New(true)
	rows := []Row{
		{Level: 2, Flags: graph.FlagNested, Decl: "int", Name: "x"},
		{Level: 1, Flags: graph.FlagExported, Decl: "point", Name: "point"},
		{Level: 0, Flags: graph.FlagFile, Decl: "sample.i"},
	}
	out := f.PutRowsFromBack(rows)
	assert.Equal(t, "FILE: sample.i\n EXPORTED: point point\n  int x\n", out)
}

func TestDuplicateRowAtSameTagIsSuppressed(t *testing.T) {
	f := New(true)
	rows := []Row{
		{Level: 2, Flags: graph.FlagNested, Decl: "int", Name: "x"},
		{Level: 2, Flags: graph.FlagNested, Decl: "int", Name: "x"},
		{Level: 2, Flags: graph.FlagNested, Decl: "int", Name: "y"},
	}
	out := f.PutRowsFromFront(rows)
	assert.Equal(t, "  int x\n  int y\n", out)
}

func TestFileRowClearsDuplicateCache(t *testing.T) {
	f := New(true)
	first := []Row{
		{Level: 2, Flags: graph.FlagNested, Decl: "int", Name: "x"},
	}
	f.PutRowsFromFront(first)

	second := []Row{
		{Level: 0, Flags: graph.FlagFile, Decl: "other.i"},
		{Level: 2, Flags: graph.FlagNested, Decl: "int", Name: "x"},
	}
	out := f.PutRowsFromFront(second)
	assert.Equal(t, "FILE: other.i\n  int x\n", out, "a new file root resets the dup cache so the repeated row reprints")
}

func TestNestedRowsSuppressedWhenNotVerbose(t *testing.T) {
	f := New(false)
	rows := []Row{
		{Level: 1, Flags: graph.FlagExported, Decl: "point", Name: "point"},
		{Level: 2, Flags: graph.FlagNested, Decl: "int", Name: "x"},
	}
	out := f.PutRowsFromFront(rows)
	assert.Equal(t, " EXPORTED: point point\n", out)
}

func TestNormalizedSubtractsFirstRowLevel(t *testing.T) {
	f := New(true)
	rows := []Row{
		{Level: 5, Flags: graph.FlagExported, Decl: "point", Name: "point"},
		{Level: 6, Flags: graph.FlagNested, Decl: "int", Name: "x"},
	}
	out := f.PutRowsFromFrontNormalized(rows)
	assert.Equal(t, " EXPORTED: point point\n int x\n", out)
}
