package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuso/kabiparser/internal/fingerprint"
	"github.com/camuso/kabiparser/internal/graph"
)

// buildSegment builds one translation unit's worth of graph: an export
// named exportName wrapping a single struct member field of a shared struct
// type, so two segments sharing the same struct type exercise the
// dedup-by-crc merge path.
func buildSegment(exportName, structDecl, memberName string) *graph.Store {
	s := graph.New()

	fileCRC, _ := s.InsertOrGet(exportName + ".i")
	s.AddInstance(0, 0, fileCRC, graph.Instance{Name: exportName + ".i", Level: 0, Flags: graph.FlagFile})

	nameCRC, _ := s.InsertOrGet(exportName)
	s.AddInstance(fileCRC, 0, nameCRC, graph.Instance{Name: exportName, Level: 1, Flags: graph.FlagExported | graph.FlagStruct | graph.FlagHasMembers})

	structCRC, _ := s.InsertOrGet(structDecl)
	s.AddInstance(nameCRC, 0, structCRC, graph.Instance{Name: memberName, Level: 2, Flags: graph.FlagNested})

	return s
}

func TestCompactMergesSharedCRCAcrossSegments(t *testing.T) {
	segA := buildSegment("wrapA", "struct shared", "s")
	segB := buildSegment("wrapB", "struct shared", "s2")

	merged := Compact([]*graph.Store{segA, segB})

	structCRC := fingerprint.Of("struct shared")
	node := merged.Lookup(structCRC)
	require.NotNil(t, node)
	assert.Len(t, node.Siblings, 2, "sibling instances from both segments are appended, not overwritten")

	sibs := node.SiblingsInOrder()
	names := []string{sibs[0].Name, sibs[1].Name}
	assert.ElementsMatch(t, []string{"s", "s2"}, names)

	wrapACRC := fingerprint.Of("wrapA")
	wrapBCRC := fingerprint.Of("wrapB")
	assert.NotNil(t, merged.Lookup(wrapACRC))
	assert.NotNil(t, merged.Lookup(wrapBCRC))
}

func TestCompactPreservesFirstSegmentDecl(t *testing.T) {
	segA := graph.New()
	crc, _ := segA.InsertOrGet("int")
	segA.AddInstance(0, 0, crc, graph.Instance{Name: "first", Level: 0})

	segB := graph.New()
	segB.EnsureNode(crc, "int (from a later, differently-text segment)")
	segB.AddInstance(0, 0, crc, graph.Instance{Name: "second", Level: 0})

	merged := Compact([]*graph.Store{segA, segB})
	node := merged.Lookup(crc)
	require.NotNil(t, node)
	assert.Equal(t, "int", node.Decl, "first segment's declaration text wins")
	assert.Len(t, node.Siblings, 2)
}

func TestCompactBackendsRoundTripsThroughSQLite(t *testing.T) {
	dirA := t.TempDir() + "/a.db"
	dirB := t.TempDir() + "/b.db"
	dirOut := t.TempDir() + "/merged.db"

	ba, err := Open(dirA)
	require.NoError(t, err)
	require.NoError(t, ba.Save(buildSegment("wrapA", "struct shared", "s")))
	require.NoError(t, ba.Close())

	bb, err := Open(dirB)
	require.NoError(t, err)
	require.NoError(t, bb.Save(buildSegment("wrapB", "struct shared", "s2")))
	require.NoError(t, bb.Close())

	ra, err := Open(dirA)
	require.NoError(t, err)
	defer ra.Close()
	rb, err := Open(dirB)
	require.NoError(t, err)
	defer rb.Close()
	out, err := Open(dirOut)
	require.NoError(t, err)
	defer out.Close()

	require.NoError(t, CompactBackends([]Backend{ra, rb}, out))

	merged, err := out.Load()
	require.NoError(t, err)

	structCRC := fingerprint.Of("struct shared")
	node := merged.Lookup(structCRC)
	require.NotNil(t, node)
	assert.Len(t, node.Siblings, 2)
}
