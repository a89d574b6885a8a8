package query

import (
	"strings"

	"github.com/camuso/kabiparser/internal/fingerprint"
	"github.com/camuso/kabiparser/internal/format"
	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/kabierr"
)

// isExported reports whether n is recognized as an export, per §4.E:
// exactly one sibling carries the EXPORTED flag.
func isExported(n *graph.DNode) bool {
	count := 0
	for _, inst := range n.Siblings {
		if inst.Flags.Has(graph.FlagExported) {
			count++
		}
	}
	return count == 1
}

// exportedInstance returns n's single EXPORTED sibling, or nil if n isn't
// recognized as an export.
func exportedInstance(n *graph.DNode) *graph.Instance {
	if !isExported(n) {
		return nil
	}
	for _, inst := range n.Siblings {
		if inst.Flags.Has(graph.FlagExported) {
			return inst
		}
	}
	return nil
}

// Exports renders every exported function matching query: its root file,
// the export line, the return, each argument, and — if verbose — every
// descendant reached by a pre-order walk of children, stopping at a
// back-pointer.
func (e *Engine) Exports(query string, wholeWord, verbose bool) (string, error) {
	e.state = Resolving

	type match struct {
		store *graph.Store
		node  *graph.DNode
	}
	var matches []match

	if wholeWord {
		// An exported D-node is keyed by its name's fingerprint (I5), the
		// same whole-word rule query.go's Resolve/Count use — not a scan of
		// Decl text, which for an export holds its walked base-type chain,
		// not its name.
		crc := fingerprint.Of(query)
		for _, s := range e.stores {
			if n := s.Lookup(crc); n != nil && isExported(n) {
				matches = append(matches, match{s, n})
				break // §5: short-circuit on first whole-word match
			}
		}
	} else {
		// Substring matching is against the exported instance's own Name,
		// for the same reason: the D-node's Decl is the walked type chain,
		// not the name "whose match" spec §4.E's Exports query describes.
		for _, s := range e.stores {
			for _, n := range s.Iter() {
				if inst := exportedInstance(n); inst != nil && strings.Contains(inst.Name, query) {
					matches = append(matches, match{s, n})
				}
			}
		}
	}

	if len(matches) == 0 {
		e.state = NotFound
		return "", kabierr.New(kabierr.NotFound, "no exported symbol matches "+query)
	}

	e.state = Traversing
	f := format.New(verbose)
	var sb strings.Builder
	for _, m := range matches {
		sb.WriteString(e.renderExport(m.store, m.node, f))
	}
	e.state = Formatting
	out := sb.String()
	e.state = Done
	return out, nil
}

func (e *Engine) renderExport(s *graph.Store, n *graph.DNode, f *format.Formatter) string {
	inst := exportedInstance(n)
	if inst == nil {
		return ""
	}

	var rows []format.Row
	if root := s.Lookup(inst.ParentCRC); root != nil {
		rows = append(rows, format.Row{Level: 0, Flags: graph.FlagFile, Decl: root.Decl})
	}
	rows = append(rows, format.Row{Level: inst.Level, Flags: inst.Flags, Decl: n.Decl, Name: inst.Name})

	for _, child := range n.Children {
		childNode := s.Lookup(child.ChildCRC)
		if childNode == nil {
			continue
		}
		childInst := childNode.Siblings[child.OrderIndex]
		if childInst == nil {
			continue
		}
		rows = append(rows, format.Row{Level: childInst.Level, Flags: childInst.Flags, Decl: childNode.Decl, Name: childInst.Name})
		if childInst.Flags.Has(graph.FlagBackPtr) {
			continue
		}
		rows = append(rows, walkPreOrder(s, childNode)...)
	}

	return f.PutRowsFromFront(rows)
}

// walkPreOrder visits n's children in order, skipping recursion past a
// back-pointer instance (spec §4.E: "stop descending at BACK_PTR").
func walkPreOrder(s *graph.Store, n *graph.DNode) []format.Row {
	var out []format.Row
	for _, child := range n.Children {
		childNode := s.Lookup(child.ChildCRC)
		if childNode == nil {
			continue
		}
		childInst := childNode.Siblings[child.OrderIndex]
		if childInst == nil {
			continue
		}
		out = append(out, format.Row{Level: childInst.Level, Flags: childInst.Flags, Decl: childNode.Decl, Name: childInst.Name})
		if childInst.Flags.Has(graph.FlagBackPtr) {
			continue
		}
		out = append(out, walkPreOrder(s, childNode)...)
	}
	return out
}
