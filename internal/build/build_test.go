package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuso/kabiparser/internal/fingerprint"
	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/symtree"
)

func intSym() *symtree.Symbol {
	return &symtree.Symbol{Kind: symtree.BaseType, Modifiers: symtree.ModSigned}
}

func ksymtab(name string) *symtree.Symbol {
	return &symtree.Symbol{Ident: "__ksymtab_" + name}
}

// scalar-arg export: int foo(int x)
func TestBuildScalarArgExport(t *testing.T) {
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
	b := New(s)
	b.Build([]*symtree.TranslationUnit{tu})

	require.True(t, b.FoundExport())

	nameCRC := fingerprint.Of("foo")
	exportNode := s.Lookup(nameCRC)
	require.NotNil(t, exportNode)
	assert.Equal(t, "int", exportNode.Decl, "the export's decl is its walked base-type chain, not its own name")
	sibs := exportNode.SiblingsInOrder()
	require.Len(t, sibs, 1)
	assert.True(t, sibs[0].Flags.Has(graph.FlagExported))
	assert.Equal(t, 1, sibs[0].Level)

	returnCRC := fingerprint.Of("int")
	returnNode := s.Lookup(returnCRC)
	require.NotNil(t, returnNode)
	retSibs := returnNode.SiblingsInOrder()
	require.Len(t, retSibs, 1)
	assert.True(t, retSibs[0].Flags.Has(graph.FlagReturn))
	assert.Equal(t, 2, retSibs[0].Level)
	assert.Equal(t, retSibs[0].Argument, returnCRC, "a top-level return's own argument field is its own crc")

	argCRC := fingerprint.Of("intx")
	argNode := s.Lookup(argCRC)
	require.NotNil(t, argNode)
	argSibs := argNode.SiblingsInOrder()
	require.Len(t, argSibs, 1)
	assert.True(t, argSibs[0].Flags.Has(graph.FlagArg))
	assert.Equal(t, "x", argSibs[0].Name)
	assert.NotEqual(t, returnCRC, argCRC, "return and argument fingerprint distinctly despite the same underlying type")
}

// struct member count: exported struct with two scalar members.
func TestBuildStructMemberCount(t *testing.T) {
	members := []*symtree.Symbol{
		{Ident: "a", BaseType: intSym()},
		{Ident: "b", BaseType: intSym()},
	}
	point := &symtree.Symbol{
		Ident: "point",
		BaseType: &symtree.Symbol{
			Kind:    symtree.Struct,
			Ident:   "point",
			Members: members,
		},
	}
	tu := &symtree.TranslationUnit{File: "point.c", Symbols: []*symtree.Symbol{ksymtab("point"), point}}

	s := graph.New()
	b := New(s)
	b.Build([]*symtree.TranslationUnit{tu})

	nameCRC := fingerprint.Of("point")
	exportNode := s.Lookup(nameCRC)
	require.NotNil(t, exportNode)
	require.Len(t, exportNode.Children, 2, "one child instance per struct member")

	aCRC := fingerprint.Of("inta")
	bCRC := fingerprint.Of("intb")
	assert.NotNil(t, s.Lookup(aCRC))
	assert.NotNil(t, s.Lookup(bCRC))
}

// back-pointer self-reference: struct node { struct node *next; }
func TestBuildBackPointerSelfReference(t *testing.T) {
	nodeMember := &symtree.Symbol{Ident: "next"}
	nodeDecl := &symtree.Symbol{
		Kind:    symtree.Struct,
		Ident:   "node",
		Members: []*symtree.Symbol{nodeMember},
	}
	nodeMember.BaseType = &symtree.Symbol{Kind: symtree.Ptr, BaseType: nodeDecl}

	export := &symtree.Symbol{Ident: "head", BaseType: nodeDecl}
	tu := &symtree.TranslationUnit{File: "node.c", Symbols: []*symtree.Symbol{ksymtab("head"), export}}

	s := graph.New()
	b := New(s)
	b.Build([]*symtree.TranslationUnit{tu})

	nameCRC := fingerprint.Of("head")
	exportNode := s.Lookup(nameCRC)
	require.NotNil(t, exportNode)
	require.Len(t, exportNode.Children, 1)

	structCRC := fingerprint.Of("struct node")
	structNode := s.Lookup(structCRC)
	require.NotNil(t, structNode)
	require.Len(t, structNode.Children, 1, "the next member")

	nextRef := structNode.Children[0]
	nextNode := s.Lookup(nextRef.ChildCRC)
	require.NotNil(t, nextNode)
	nextInst := nextNode.Siblings[nextRef.OrderIndex]
	require.NotNil(t, nextInst)
	assert.Equal(t, structCRC, nextRef.ChildCRC, "a pointer back to the same struct fingerprints identically")
	assert.True(t, nextInst.Flags.Has(graph.FlagBackPtr))
	assert.False(t, nextInst.Flags.Has(graph.FlagHasMembers), "a back-pointer is never descended into")
}

// dedup across TUs: two distinct exported wrapper structs, in two different
// files, each nesting the same inner struct type by value. The inner type
// gets exactly one D-node; its second occurrence is marked IS_DUP and is
// not re-descended into.
func TestBuildDedupAcrossTranslationUnits(t *testing.T) {
	innerStruct := func() *symtree.Symbol {
		return &symtree.Symbol{
			Kind:    symtree.Struct,
			Ident:   "shared",
			Members: []*symtree.Symbol{{Ident: "a", BaseType: intSym()}},
		}
	}

	wrapper := func(file, wrapperName, fieldName string) *symtree.TranslationUnit {
		wrap := &symtree.Symbol{
			Ident: wrapperName,
			BaseType: &symtree.Symbol{
				Kind:    symtree.Struct,
				Ident:   wrapperName,
				Members: []*symtree.Symbol{{Ident: fieldName, BaseType: innerStruct()}},
			},
		}
		return &symtree.TranslationUnit{File: file, Symbols: []*symtree.Symbol{ksymtab(wrapperName), wrap}}
	}

	s := graph.New()
	b := New(s)
	b.Build([]*symtree.TranslationUnit{
		wrapper("a.c", "wrapA", "s"),
		wrapper("b.c", "wrapB", "s2"),
	})

	structCRC := fingerprint.Of("struct shared")
	structNode := s.Lookup(structCRC)
	require.NotNil(t, structNode)

	sibs := structNode.SiblingsInOrder()
	require.Len(t, sibs, 2, "one instance per nesting occurrence")
	assert.False(t, sibs[0].Flags.Has(graph.FlagIsDup), "first occurrence builds the member list")
	assert.True(t, sibs[0].Flags.Has(graph.FlagHasMembers))
	assert.True(t, sibs[1].Flags.Has(graph.FlagIsDup), "second occurrence is a duplicate")
	assert.False(t, sibs[1].Flags.Has(graph.FlagHasMembers), "a duplicate is not re-descended")

	require.Len(t, structNode.Children, 1, "members are only ever attached once, on the first occurrence")
}
