// Package frontend is the concrete, swappable C parser front end (spec §1
// treats the parser as an external collaborator; this package is that
// collaborator, adapting github.com/smacker/go-tree-sitter's C grammar
// into the internal/symtree contract the builder consumes). Grounded on
// providers/base.Provider's parser-construction and AST-walk pattern.
//
// Tree-sitter is a syntax parser, not a semantic one: it does not resolve
// typedefs or track modifier bit-masks the way the original tool's sparse
// front end did. This package's declContext first pass and word-by-word
// modifier resolution are a best-effort reconstruction of that semantic
// layer, not a claim of sparse-equivalent fidelity — acceptable because
// spec.md's own Non-goals exclude semantic type-checking, and the builder
// itself is parser-agnostic by construction.
package frontend

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/camuso/kabiparser/internal/symtree"
)

// Parser parses preprocessed C translation units into symtree form.
type Parser struct {
	sp    *sitter.Parser
	cache *Cache
}

// New returns a Parser configured for the C grammar.
func New() *Parser {
	sp := sitter.NewParser()
	sp.SetLanguage(c.GetLanguage())
	return &Parser{sp: sp, cache: NewCache()}
}

// Stats reports the parser's cache hit/miss counts.
func (p *Parser) Stats() map[string]int64 { return p.cache.Stats() }

// Parse converts one preprocessed .i file's source into a TranslationUnit.
func (p *Parser) Parse(ctx context.Context, file string, source []byte) (*symtree.TranslationUnit, error) {
	tree, err := p.cache.GetOrParse(ctx, p.sp, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	dc := newDeclContext()
	dc.scan(root, source)

	cv := &converter{src: source, dc: dc}
	tu := &symtree.TranslationUnit{File: file}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		tu.Symbols = append(tu.Symbols, cv.convertTopLevel(root.NamedChild(i))...)
	}
	return tu, nil
}
