// Package graph implements the content-addressed type graph: declaration
// nodes keyed by fingerprint, each owning an ordered set of instance
// (use-site) nodes. See spec §3 for the invariants this package enforces.
package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/camuso/kabiparser/internal/fingerprint"
)

// Flags is a bit-set drawn from the eleven instance flags named in spec §3.
type Flags uint16

const (
	FlagFile Flags = 1 << iota
	FlagExported
	FlagArg
	FlagReturn
	FlagNested
	FlagPointer
	FlagStruct
	FlagFunction
	FlagHasMembers
	FlagBackPtr
	FlagIsDup
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// ChildRef records one member's position and declaration under a parent.
type ChildRef struct {
	OrderIndex int
	ChildCRC   uint32
}

// Instance is one use-site (C-node) of a declaration.
type Instance struct {
	Name        string
	Level       int
	Flags       Flags
	ParentOrder int
	ParentCRC   uint32
	Function    uint32
	Argument    uint32
}

// DNode is the canonical record for one distinct type-declaration string.
type DNode struct {
	CRC      uint32
	Decl     string
	Children []ChildRef
	Siblings map[int]*Instance
}

// Store is the mapping from fingerprint to D-node (spec §4.B).
type Store struct {
	mu    sync.Mutex
	nodes map[uint32]*DNode
}

// New returns an empty store.
func New() *Store {
	return &Store{nodes: make(map[uint32]*DNode)}
}

// InsertOrGet computes the fingerprint of decl; if no D-node exists yet for
// it, an empty one is created. Returns the crc and whether it was new.
func (s *Store) InsertOrGet(decl string) (crc uint32, isNew bool) {
	crc = fingerprint.Of(decl)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[crc]; ok {
		return crc, false
	}
	s.nodes[crc] = &DNode{CRC: crc, Decl: decl, Siblings: make(map[int]*Instance)}
	return crc, true
}

// EnsureNode makes sure a D-node exists at crc, storing decl as its
// declaration text if it creates one. Unlike InsertOrGet, crc is taken as
// given rather than recomputed from decl — callers that fingerprint a
// composed string (declaration text plus identifier, spec §4.D I5) need the
// D-node keyed at that composed crc while still recording the plain
// declaration text. Returns whether it created a new node.
func (s *Store) EnsureNode(crc uint32, decl string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[crc]; ok {
		return false
	}
	s.nodes[crc] = &DNode{CRC: crc, Decl: decl, Siblings: make(map[int]*Instance)}
	return true
}

// Lookup returns the D-node for crc, or nil if absent. Absence is not an
// error (spec §4.B).
func (s *Store) Lookup(crc uint32) *DNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes[crc]
}

// Has reports whether crc already has a D-node in the store.
func (s *Store) Has(crc uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[crc]
	return ok
}

// AddInstance appends inst as a use-site of childCRC under parentCRC at
// parentOrder, atomically updating both the parent's children and the
// child's siblings. Returns the new order_index assigned within the child's
// siblings map. A missing parent is a programming fault: spec §4.B classes
// this as panic/abort, not a recoverable error.
func (s *Store) AddInstance(parentCRC uint32, parentOrder int, childCRC uint32, inst Instance) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	child, ok := s.nodes[childCRC]
	if !ok {
		panic(fmt.Sprintf("graph: AddInstance: no D-node for child crc %08x", childCRC))
	}

	orderIndex := len(child.Siblings)
	inst.ParentCRC = parentCRC
	inst.ParentOrder = parentOrder
	child.Siblings[orderIndex] = &inst

	if parentCRC != 0 {
		parent, ok := s.nodes[parentCRC]
		if !ok {
			panic(fmt.Sprintf("graph: AddInstance: no D-node for parent crc %08x", parentCRC))
		}
		parent.Children = append(parent.Children, ChildRef{OrderIndex: orderIndex, ChildCRC: childCRC})
	}

	return orderIndex
}

// Iter returns every D-node in the store, ordered by crc for determinism
// (tests and serialization both want a stable enumeration order).
func (s *Store) Iter() []*DNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*DNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CRC < out[j].CRC })
	return out
}

// Len returns the number of distinct D-nodes in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// MergeFrom folds other's D-nodes into s, crc by crc: the first store to
// have introduced a given crc keeps its declaration text, every store's
// siblings are appended (renumbered to avoid order_index collisions with
// s's own pre-existing siblings), and children lists are unioned by
// (OrderIndex, ChildCRC) pair, with each ChildRef's OrderIndex carried
// forward by the same per-crc renumbering its target child received. Used
// by internal/store's segment-file compaction (spec §6).
func (s *Store) MergeFrom(other *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Pass 1: figure out, for every crc other introduces or adds siblings
	// to, how far its own order_index numbering needs to shift to land
	// after whatever s already has at that crc.
	otherNodes := other.Iter()
	base := make(map[uint32]int, len(otherNodes))
	for _, on := range otherNodes {
		if n, ok := s.nodes[on.CRC]; ok {
			base[on.CRC] = len(n.Siblings)
		} else {
			base[on.CRC] = 0
		}
	}

	// Pass 2: create missing D-nodes and append renumbered siblings.
	for _, on := range otherNodes {
		n, ok := s.nodes[on.CRC]
		if !ok {
			n = &DNode{CRC: on.CRC, Decl: on.Decl, Siblings: make(map[int]*Instance)}
			s.nodes[on.CRC] = n
		}
		b := base[on.CRC]
		for i, inst := range on.SiblingsInOrder() {
			cp := *inst
			n.Siblings[b+i] = &cp
		}
	}

	// Pass 3: union children lists, shifting each ref's OrderIndex by its
	// target child's renumbering offset, so it still points at the right
	// (renumbered) sibling.
	for _, on := range otherNodes {
		n := s.nodes[on.CRC]
		existing := make(map[ChildRef]bool, len(n.Children))
		for _, c := range n.Children {
			existing[c] = true
		}
		for _, c := range on.Children {
			shifted := ChildRef{OrderIndex: c.OrderIndex + base[c.ChildCRC], ChildCRC: c.ChildCRC}
			if !existing[shifted] {
				n.Children = append(n.Children, shifted)
				existing[shifted] = true
			}
		}
	}
}

// Restore repopulates an already-EnsureNode-seeded store's children and
// siblings directly from previously-serialized state, bypassing AddInstance
// (which assigns fresh order_index values and requires parents to already
// exist) since a deserialized graph already carries both of those and must
// reproduce them byte-for-byte rather than re-derive them.
func (s *Store) Restore(children map[uint32][]ChildRef, siblings map[uint32]map[int]*Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for crc, refs := range children {
		if n, ok := s.nodes[crc]; ok {
			n.Children = refs
		}
	}
	for crc, sibs := range siblings {
		if n, ok := s.nodes[crc]; ok {
			n.Siblings = sibs
		}
	}
}

// SiblingsInOrder returns d's instances ordered by order_index (I2).
func (d *DNode) SiblingsInOrder() []*Instance {
	idxs := make([]int, 0, len(d.Siblings))
	for i := range d.Siblings {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	out := make([]*Instance, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, d.Siblings[i])
	}
	return out
}
