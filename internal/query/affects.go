package query

import (
	"strings"

	"github.com/camuso/kabiparser/internal/fingerprint"
	"github.com/camuso/kabiparser/internal/format"
	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/kabierr"
)

// ancestryGroup is one contiguous run of d's siblings sharing the same
// (argument, function) pair, per §4.E step 1.
type ancestryGroup struct {
	instances []*graph.Instance
}

// groupByAncestry partitions siblings (already in insertion/order_index
// order) into contiguous ancestry groups.
func groupByAncestry(siblings []*graph.Instance) []ancestryGroup {
	var groups []ancestryGroup
	for _, inst := range siblings {
		if n := len(groups); n > 0 {
			last := groups[n-1].instances[len(groups[n-1].instances)-1]
			if last.Argument == inst.Argument && last.Function == inst.Function {
				groups[n-1].instances = append(groups[n-1].instances, inst)
				continue
			}
		}
		groups = append(groups, ancestryGroup{instances: []*graph.Instance{inst}})
	}
	return groups
}

// deepest returns the group's instance with the largest Level, keeping the
// first occurrence on a tie so selection stays deterministic.
func (g ancestryGroup) deepest() *graph.Instance {
	best := g.instances[0]
	for _, inst := range g.instances[1:] {
		if inst.Level > best.Level {
			best = inst
		}
	}
	return best
}

// Affects reports every exported function that transitively uses the
// compound type matched by query, via the ancestry walk-up in §4.E.
func (e *Engine) Affects(query string, wholeWord, verbose bool) (string, error) {
	e.state = Resolving

	type match struct {
		store *graph.Store
		node  *graph.DNode
	}
	var matches []match

	if wholeWord {
		// Same whole-word rule as query.go's Resolve/Count and Exports:
		// fingerprint the query and look the D-node up directly, rather
		// than scanning for an equal Decl string.
		crc := fingerprint.Of(query)
		for _, s := range e.stores {
			if n := s.Lookup(crc); n != nil {
				matches = append(matches, match{s, n})
				break
			}
		}
	} else {
		for _, s := range e.stores {
			for _, n := range s.Iter() {
				if strings.Contains(n.Decl, query) {
					matches = append(matches, match{s, n})
				}
			}
		}
	}

	if len(matches) == 0 {
		e.state = NotFound
		return "", kabierr.New(kabierr.NotFound, "no declaration matches "+query)
	}

	e.state = Traversing
	f := format.New(verbose)
	var sb strings.Builder
	for _, m := range matches {
		for _, group := range groupByAncestry(m.node.SiblingsInOrder()) {
			rows := walkUp(m.store, m.node, group.deepest())
			sb.WriteString(f.PutRowsFromBack(rows))
		}
	}
	e.state = Formatting
	out := sb.String()
	e.state = Done
	return out, nil
}

// walkUp builds the row list from the starting instance up to its root,
// per §4.E steps 2–3. The returned slice is deepest-first; callers print it
// with PutRowsFromBack to reverse that into root-first reading order.
func walkUp(s *graph.Store, node *graph.DNode, cur *graph.Instance) []format.Row {
	var rows []format.Row
	curNode := node

	for {
		rows = append(rows, format.Row{Level: cur.Level, Flags: cur.Flags, Decl: curNode.Decl, Name: cur.Name})

		if cur.ParentCRC == 0 {
			break
		}
		parentNode := s.Lookup(cur.ParentCRC)
		if parentNode == nil {
			break
		}

		var selected *graph.Instance
		for _, pInst := range parentNode.SiblingsInOrder() {
			if pInst.Level == cur.Level-1 && pInst.Argument == cur.Argument && pInst.Function == cur.Function {
				selected = pInst
				break // SiblingsInOrder is order_index-ascending: first hit is the tie-break winner
			}
		}
		if selected == nil && cur.Level-1 < 3 {
			sibs := parentNode.SiblingsInOrder()
			if len(sibs) > 0 {
				selected = sibs[0]
			}
		}
		if selected == nil {
			break
		}

		cur = selected
		curNode = parentNode
	}

	return rows
}
