// Package query implements the lookup engine over a built type graph:
// whole-word/substring resolution, sibling/D-node counting, exported-
// function listing, and the struct/affects ancestry walk. See spec §4.E.
//
// Grounded on the original get_parents_wide/get_parents_deep pair in
// kabilookup.cpp for the struct/affects traversal's shape — group by
// ancestry, walk up from the deepest instance in each group, recurse one
// level at a time — reimplemented against this package's own graph/format
// types rather than that tool's qnode/cnode structures.
package query

import (
	"strings"

	"github.com/camuso/kabiparser/internal/fingerprint"
	"github.com/camuso/kabiparser/internal/format"
	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/kabierr"
)

// State is the query engine's per-query progress, readable through
// Engine.State. The CLI's NOT_FOUND exit code comes from the returned
// kabierr.NotFound error, not from this field. Not a general FSM, since
// there are five states and one branch point.
type State int

const (
	Loading State = iota
	Resolving
	NotFound
	Traversing
	Formatting
	Done
)

// Engine runs lookups across one or more previously-built graph stores —
// one per loaded database file, queried in order, per §5's "processes one
// at a time."
type Engine struct {
	stores []*graph.Store
	state  State
}

// New returns an Engine over the given stores, queried in the order given.
func New(stores []*graph.Store) *Engine {
	return &Engine{stores: stores}
}

// State reports the engine's progress through its last query.
func (e *Engine) State() State { return e.state }

// Resolve looks up D-nodes matching query. Whole-word fingerprints query
// and does a direct lookup (at most one match, across stores, first hit
// wins — §5's short-circuit rule). Substring scans every D-node in every
// store and collects those whose Decl contains query.
func (e *Engine) Resolve(query string, wholeWord bool) ([]*graph.DNode, error) {
	e.state = Resolving

	if wholeWord {
		crc := fingerprint.Of(query)
		for _, s := range e.stores {
			if n := s.Lookup(crc); n != nil {
				e.state = Done
				return []*graph.DNode{n}, nil
			}
		}
		e.state = NotFound
		return nil, kabierr.New(kabierr.NotFound, "no declaration matches "+query)
	}

	var out []*graph.DNode
	for _, s := range e.stores {
		for _, n := range s.Iter() {
			if strings.Contains(n.Decl, query) {
				out = append(out, n)
			}
		}
	}
	if len(out) == 0 {
		e.state = NotFound
		return nil, kabierr.New(kabierr.NotFound, "no declaration contains "+query)
	}
	e.state = Done
	return out, nil
}

// Count reports how many matches query has: sibling count of the matched
// D-node for whole-word, number of matching D-nodes for substring. A count
// of zero is reported as NOT_FOUND rather than 0, per §4.E.
func (e *Engine) Count(query string, wholeWord bool) (int, error) {
	nodes, err := e.Resolve(query, wholeWord)
	if err != nil {
		return 0, err
	}
	if wholeWord {
		return len(nodes[0].Siblings), nil
	}
	return len(nodes), nil
}
