package frontend

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/camuso/kabiparser/internal/symtree"
)

// declContext is the per-translation-unit typedef table a first pass over
// the tree builds, since tree-sitter's C grammar has no notion that
// `typedef struct foo bar;` makes `bar` and `struct foo` the same type —
// that resolution has to happen here instead.
type declContext struct {
	typedefs map[string]*symtree.Symbol
}

func newDeclContext() *declContext {
	return &declContext{typedefs: make(map[string]*symtree.Symbol)}
}

// scan walks the whole tree once, recording every typedef name against the
// base-type chain it resolves to.
func (dc *declContext) scan(root *sitter.Node, src []byte) {
	cv := &converter{src: src, dc: dc}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "type_definition" {
			var mods symtree.Modifier
			longCount := 0
			base := cv.typeSymbol(n.ChildByFieldName("type"), &mods, &longCount)
			if sym := cv.wrapDeclarator(n.ChildByFieldName("declarator"), base); sym != nil && sym.Ident != "" {
				dc.typedefs[sym.Ident] = sym.BaseType
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
}
