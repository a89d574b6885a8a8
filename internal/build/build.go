// Package build walks a C semantic tree (spec §4.D) and populates a
// graph.Store: one declaration node per distinct type-declaration string,
// one instance node per use-site, with duplicate and back-pointer
// detection along the way.
package build

import (
	"strings"

	"github.com/camuso/kabiparser/internal/fingerprint"
	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/modstr"
	"github.com/camuso/kabiparser/internal/symtree"
)

const exportPrefix = "__ksymtab_"

// Builder walks translation units into a graph.Store.
type Builder struct {
	store       *graph.Store
	foundExport bool
}

// New returns a Builder writing into store.
func New(store *graph.Store) *Builder {
	return &Builder{store: store}
}

// FoundExport reports whether any exported symbol was built so far — the
// builder CLI's exit-code-1 condition (spec §6).
func (b *Builder) FoundExport() bool { return b.foundExport }

// Build walks every translation unit, discovering exports and recursing
// into their signatures and member lists.
func (b *Builder) Build(units []*symtree.TranslationUnit) {
	for _, tu := range units {
		b.buildUnit(tu)
	}
}

func (b *Builder) buildUnit(tu *symtree.TranslationUnit) {
	fileCRC, _ := b.store.InsertOrGet(tu.File)
	fileOrder := b.store.AddInstance(0, 0, fileCRC, graph.Instance{Level: 0, Flags: graph.FlagFile})

	for _, sym := range tu.Symbols {
		if sym.Ident == "" || !strings.HasPrefix(sym.Ident, exportPrefix) {
			continue
		}
		exportName := strings.TrimPrefix(sym.Ident, exportPrefix)
		internal := findInternalExported(tu.Symbols, exportName)
		if internal == nil {
			continue
		}
		b.buildExport(fileCRC, fileOrder, exportName, internal)
	}
}

// findInternalExported resolves the stripped export name to its internal
// declaration, filtered to the kinds spec §4.D names. If none is found the
// export is silently skipped, per spec.
func findInternalExported(symbols []*symtree.Symbol, name string) *symtree.Symbol {
	for _, sym := range symbols {
		if sym.Ident != name || sym.BaseType == nil {
			continue
		}
		switch sym.BaseType.Kind {
		case symtree.BaseType, symtree.Ptr, symtree.Fn, symtree.Array, symtree.Struct, symtree.Union:
			return sym
		}
	}
	return nil
}

// chainWalk is what get_declist (spec §4.D) reconstructs from one base-type
// chain: a declaration token list plus the flags and member list discovered
// along the way.
type chainWalk struct {
	tokens  []string
	flags   graph.Flags
	members []*symtree.Symbol
}

func (w *chainWalk) decl() string { return strings.Join(w.tokens, " ") }

// walkChain reconstructs the declaration token list by walking sym's
// base-type chain, exactly as spec §4.D's get_declist describes. Only
// struct/union links carry a member list forward (spec §1 scopes the
// type-graph exploration to "the members of any compound types"); a
// function-pointer argument encountered mid-chain is not itself descended
// into, matching that scope.
func walkChain(sym *symtree.Symbol, w *chainWalk) {
	for cur := sym; cur != nil; cur = cur.BaseType {
		switch cur.Kind {
		case symtree.Ptr:
			w.flags |= graph.FlagPointer
		case symtree.BaseType:
			if cur.Modifiers == 0 {
				w.tokens = append(w.tokens, "void")
			} else {
				// modstr's conditional trailing space is fingerprint-
				// contractual (spec §4.D, Open Question (a)); it is kept
				// verbatim as this token's text.
				w.tokens = append(w.tokens, modstr.Of(cur.Modifiers))
			}
		default:
			if tn := cur.Kind.TypeName(); tn != "" {
				w.tokens = append(w.tokens, tn)
			}
		}

		if cur.Kind == symtree.Struct || cur.Kind == symtree.Union {
			w.flags |= graph.FlagStruct
			if len(cur.Members) > 0 {
				w.flags |= graph.FlagHasMembers
				w.members = cur.Members
			}
		}
		if cur.Kind == symtree.Fn {
			w.flags |= graph.FlagFunction
		}
		if cur.Ident != "" {
			w.tokens = append(w.tokens, cur.Ident)
		}
	}
}

// buildExport creates the file-rooted EXPORTED instance and, for functions,
// its RETURN and ARG instances (spec §4.D "Per-export construction").
func (b *Builder) buildExport(fileCRC uint32, fileOrder int, name string, sym *symtree.Symbol) {
	b.foundExport = true

	w := &chainWalk{}
	if sym.BaseType != nil {
		walkChain(sym.BaseType, w)
	}

	// I5: the exported instance's fingerprint key is the exported name
	// alone, but the D-node's Decl is the reconstructed signature text
	// walked above — keying and printing are separate concerns (spec §4.D).
	nameCRC := fingerprint.Of(name)
	b.store.EnsureNode(nameCRC, w.decl())
	exportOrder := b.store.AddInstance(fileCRC, fileOrder, nameCRC, graph.Instance{
		Name: name, Level: 1, Flags: graph.FlagExported | (w.flags &^ graph.FlagPointer),
	})

	isFunction := w.flags.Has(graph.FlagFunction) || (sym.BaseType != nil && sym.BaseType.Kind == symtree.Fn)
	if isFunction && sym.BaseType != nil {
		b.descend(sym.BaseType, nameCRC, exportOrder, 2, graph.FlagReturn, nameCRC, "", 0)
		for _, arg := range sym.BaseType.Arguments {
			b.descend(arg, nameCRC, exportOrder, 2, graph.FlagArg, nameCRC, arg.Ident, 0)
		}
		return
	}

	if w.flags.Has(graph.FlagHasMembers) {
		for _, m := range w.members {
			b.descend(m, nameCRC, exportOrder, 2, graph.FlagNested, nameCRC, m.Ident, 0)
		}
	}
}

// descend creates one instance (return/arg/member) for binding — a Symbol
// whose own BaseType is the chain to reconstruct and whose ident (passed
// separately, since some bindings such as RETURN carry none) names the
// use-site. It performs duplicate/back-pointer detection and recurses into
// struct/union members, exactly per spec §4.D.
//
// argumentCRC is the fingerprint of the enclosing top-level argument or
// return of the current function; pass 0 when binding IS that top-level
// argument/return (descend will then set it to binding's own crc for its
// descendants).
func (b *Builder) descend(binding *symtree.Symbol, parentCRC uint32, parentOrder int, level int, kind graph.Flags, functionCRC uint32, ident string, argumentCRC uint32) uint32 {
	w := &chainWalk{}
	if binding.BaseType != nil {
		walkChain(binding.BaseType, w)
	}

	decl := w.decl()
	composed := decl
	if !w.flags.Has(graph.FlagStruct) {
		composed = decl + ident // I5: no separator — this is the original tool's exact composition.
	}
	crc := fingerprint.Of(composed)

	inst := graph.Instance{
		Name:     ident,
		Level:    level,
		Flags:    kind | w.flags,
		Function: functionCRC,
	}
	if argumentCRC == 0 {
		inst.Argument = crc
	} else {
		inst.Argument = argumentCRC
	}

	if crc == parentCRC {
		inst.Flags |= graph.FlagBackPtr
		inst.Flags &^= graph.FlagHasMembers
		b.store.EnsureNode(crc, decl)
		b.store.AddInstance(parentCRC, parentOrder, crc, inst)
		return crc
	}

	alreadyKnown := b.store.Has(crc)
	b.store.EnsureNode(crc, decl)

	if alreadyKnown && inst.Flags.Has(graph.FlagHasMembers) {
		inst.Flags |= graph.FlagIsDup
		inst.Flags &^= graph.FlagHasMembers
		b.store.AddInstance(parentCRC, parentOrder, crc, inst)
		return crc
	}

	order := b.store.AddInstance(parentCRC, parentOrder, crc, inst)

	if inst.Flags.Has(graph.FlagHasMembers) {
		for _, m := range w.members {
			b.descend(m, crc, order, level+1, graph.FlagNested, functionCRC, m.Ident, inst.Argument)
		}
	}

	return crc
}
