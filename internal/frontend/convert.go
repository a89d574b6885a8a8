package frontend

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/camuso/kabiparser/internal/modstr"
	"github.com/camuso/kabiparser/internal/symtree"
)

// converter turns tree-sitter C syntax nodes into symtree.Symbol chains.
// It carries the source buffer (tree-sitter nodes only record byte ranges)
// and the declContext built by the first pass.
type converter struct {
	src []byte
	dc  *declContext
}

func (cv *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(cv.src)
}

// convertTopLevel converts one top-level translation-unit child into zero
// or more bindings. type_definition is handled entirely by declContext's
// first pass and contributes no binding of its own.
func (cv *converter) convertTopLevel(n *sitter.Node) []*symtree.Symbol {
	switch n.Type() {
	case "declaration", "function_definition":
		if sym := cv.convertDeclOrDef(n); sym != nil {
			return []*symtree.Symbol{sym}
		}
	}
	return nil
}

func (cv *converter) convertDeclOrDef(n *sitter.Node) *symtree.Symbol {
	var mods symtree.Modifier
	longCount := 0
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch.Type() == "storage_class_specifier" || ch.Type() == "type_qualifier" {
			cv.applyWord(cv.text(ch), &mods, &longCount)
		}
	}

	base := cv.typeSymbol(n.ChildByFieldName("type"), &mods, &longCount)
	declNode := n.ChildByFieldName("declarator")
	if declNode == nil {
		return nil
	}
	return cv.wrapDeclarator(declNode, base)
}

// wrapDeclarator walks a declarator subtree outside-in, building the
// pointer/function/array chain around base and returning the innermost
// identifier as the binding, with that chain as its BaseType.
func (cv *converter) wrapDeclarator(n *sitter.Node, base *symtree.Symbol) *symtree.Symbol {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "type_identifier", "field_identifier":
		return &symtree.Symbol{Ident: cv.text(n), BaseType: base}
	case "pointer_declarator":
		wrapped := &symtree.Symbol{Kind: symtree.Ptr, BaseType: base}
		return cv.wrapDeclarator(n.ChildByFieldName("declarator"), wrapped)
	case "function_declarator":
		fn := &symtree.Symbol{Kind: symtree.Fn, BaseType: base}
		fn.Arguments = cv.convertParams(n.ChildByFieldName("parameters"))
		return cv.wrapDeclarator(n.ChildByFieldName("declarator"), fn)
	case "array_declarator":
		arr := &symtree.Symbol{Kind: symtree.Array, BaseType: base}
		return cv.wrapDeclarator(n.ChildByFieldName("declarator"), arr)
	case "parenthesized_declarator":
		return cv.wrapDeclarator(n.NamedChild(0), base)
	default:
		return nil
	}
}

func (cv *converter) convertParams(params *sitter.Node) []*symtree.Symbol {
	if params == nil {
		return nil
	}
	var out []*symtree.Symbol
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		var mods symtree.Modifier
		longCount := 0
		for j := 0; j < int(p.ChildCount()); j++ {
			ch := p.Child(j)
			if ch.Type() == "type_qualifier" || ch.Type() == "storage_class_specifier" {
				cv.applyWord(cv.text(ch), &mods, &longCount)
			}
		}
		base := cv.typeSymbol(p.ChildByFieldName("type"), &mods, &longCount)
		declNode := p.ChildByFieldName("declarator")
		if declNode == nil {
			out = append(out, &symtree.Symbol{BaseType: base}) // unnamed parameter
			continue
		}
		if sym := cv.wrapDeclarator(declNode, base); sym != nil {
			out = append(out, sym)
		}
	}
	return out
}

func (cv *converter) convertFieldList(body *sitter.Node) []*symtree.Symbol {
	var out []*symtree.Symbol
	for i := 0; i < int(body.NamedChildCount()); i++ {
		fd := body.NamedChild(i)
		if fd.Type() != "field_declaration" {
			continue
		}
		var mods symtree.Modifier
		longCount := 0
		for j := 0; j < int(fd.ChildCount()); j++ {
			ch := fd.Child(j)
			if ch.Type() == "type_qualifier" || ch.Type() == "storage_class_specifier" {
				cv.applyWord(cv.text(ch), &mods, &longCount)
			}
		}
		base := cv.typeSymbol(fd.ChildByFieldName("type"), &mods, &longCount)
		declNode := fd.ChildByFieldName("declarator")
		if declNode == nil {
			out = append(out, &symtree.Symbol{BaseType: base})
			continue
		}
		if sym := cv.wrapDeclarator(declNode, base); sym != nil {
			out = append(out, sym)
		}
	}
	return out
}

// typeSymbol resolves a "type" field node into the innermost link of a
// base-type chain — a struct/union/enum/typedef reference, or a BaseType
// link carrying the modifier mask accumulated from mods/longCount plus
// whatever words typeNode itself contributes (a primitive_type or
// sized_type_specifier node's own text).
func (cv *converter) typeSymbol(typeNode *sitter.Node, mods *symtree.Modifier, longCount *int) *symtree.Symbol {
	if typeNode == nil {
		return &symtree.Symbol{Kind: symtree.BaseType, Modifiers: *mods}
	}

	switch typeNode.Type() {
	case "struct_specifier", "union_specifier":
		kind := symtree.Struct
		if typeNode.Type() == "union_specifier" {
			kind = symtree.Union
		}
		name := cv.text(typeNode.ChildByFieldName("name"))
		var members []*symtree.Symbol
		if body := typeNode.ChildByFieldName("body"); body != nil {
			members = cv.convertFieldList(body)
		}
		return &symtree.Symbol{Kind: kind, Ident: name, Members: members}
	case "enum_specifier":
		return &symtree.Symbol{Kind: symtree.Enum, Ident: cv.text(typeNode.ChildByFieldName("name"))}
	case "type_identifier":
		name := cv.text(typeNode)
		if resolved, ok := cv.dc.typedefs[name]; ok {
			return resolved
		}
		return &symtree.Symbol{Kind: symtree.Typedef, Ident: name}
	default: // primitive_type, sized_type_specifier
		for _, w := range strings.Fields(cv.text(typeNode)) {
			cv.applyWord(w, mods, longCount)
		}
		return &symtree.Symbol{Kind: symtree.BaseType, Modifiers: *mods}
	}
}

// applyWord folds one keyword token into mods. "long" is special: spec
// §4.D's modifier table models repeat count as distinct bits
// (long/long long/long long long), so repeated "long" tokens promote
// through them rather than setting one bit twice.
func (cv *converter) applyWord(word string, mods *symtree.Modifier, longCount *int) {
	switch word {
	case "long":
		*longCount++
		switch *longCount {
		case 1:
			*mods |= symtree.ModLong
		case 2:
			*mods &^= symtree.ModLong
			*mods |= symtree.ModLongLong
		default:
			*mods &^= symtree.ModLongLong
			*mods |= symtree.ModLongLongLong
		}
	case "int":
		if *mods&(symtree.ModSigned|symtree.ModUnsigned) == 0 {
			*mods |= symtree.ModSigned
		}
	case "void", "float", "double":
		// Not modeled as modifier bits (spec §4.D's table has none for
		// them); void is the zero-modifier case by design, and
		// floating-point kernel ABI exports do not occur in practice.
	default:
		if bit, ok := modstr.BitForKeyword(word); ok {
			*mods |= bit
		}
	}
}
