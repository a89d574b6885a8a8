// Package store persists an internal/graph.Store to and from a SQLite-family
// database, via two interchangeable backends (internal/store/sqlite.go and
// internal/store/purego.go) behind the Backend interface. See spec §4.C.
//
// Schema style is grounded on the teacher's models.Stage/Apply/Session:
// plain GORM structs with an explicit TableName, JSON columns for anything
// that doesn't map to a scalar.
package store

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/camuso/kabiparser/internal/graph"
)

// Backend loads and saves a whole graph.Store against one database file or
// DSN. Loading an absent or empty file yields an empty Store rather than an
// error, matching the cumulative-mode contract builder runs rely on.
type Backend interface {
	Load() (*graph.Store, error)
	Save(s *graph.Store) error
	Close() error
}

// declNodeRow is the decl_nodes table row: crc primary key, declaration
// text, and the ordered child-reference list as a JSON column (GORM has no
// native ordered-array column type, and order is significant — I2).
type declNodeRow struct {
	CRC      uint32         `gorm:"primaryKey;column:crc"`
	Decl     string         `gorm:"column:decl;type:text"`
	Children datatypes.JSON `gorm:"column:children;type:jsonb"`
}

func (declNodeRow) TableName() string { return "decl_nodes" }

// childRefJSON mirrors graph.ChildRef for JSON (de)serialization.
type childRefJSON struct {
	OrderIndex int    `json:"order_index"`
	ChildCRC   uint32 `json:"child_crc"`
}

func encodeChildren(refs []graph.ChildRef) datatypes.JSON {
	out := make([]childRefJSON, len(refs))
	for i, r := range refs {
		out[i] = childRefJSON{OrderIndex: r.OrderIndex, ChildCRC: r.ChildCRC}
	}
	raw, _ := json.Marshal(out)
	return datatypes.JSON(raw)
}

func decodeChildren(raw datatypes.JSON) []graph.ChildRef {
	if len(raw) == 0 {
		return nil
	}
	var in []childRefJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil
	}
	out := make([]graph.ChildRef, len(in))
	for i, r := range in {
		out[i] = graph.ChildRef{OrderIndex: r.OrderIndex, ChildCRC: r.ChildCRC}
	}
	return out
}

// instanceRow is one instances table row, mirroring graph.Instance plus the
// crc of the D-node it is a sibling of and its order_index within that
// D-node's Siblings map.
type instanceRow struct {
	ID          uint   `gorm:"primaryKey;autoIncrement;column:id"`
	DeclCRC     uint32 `gorm:"column:decl_crc;index"`
	OrderIndex  int    `gorm:"column:order_index"`
	Name        string `gorm:"column:name"`
	Level       int    `gorm:"column:level"`
	Flags       uint16 `gorm:"column:flags"`
	ParentOrder int    `gorm:"column:parent_order"`
	ParentCRC   uint32 `gorm:"column:parent_crc"`
	Function    uint32 `gorm:"column:function"`
	Argument    uint32 `gorm:"column:argument"`
}

func (instanceRow) TableName() string { return "instances" }

// dumpStore flattens a graph.Store into the row shapes both backends share.
func dumpStore(s *graph.Store) ([]declNodeRow, []instanceRow) {
	nodes := s.Iter()
	declRows := make([]declNodeRow, 0, len(nodes))
	var instRows []instanceRow

	for _, n := range nodes {
		declRows = append(declRows, declNodeRow{
			CRC:      n.CRC,
			Decl:     n.Decl,
			Children: encodeChildren(n.Children),
		})
		for _, inst := range n.SiblingsInOrder() {
			instRows = append(instRows, instanceRow{
				DeclCRC:     n.CRC,
				OrderIndex:  instanceOrder(n, inst),
				Name:        inst.Name,
				Level:       inst.Level,
				Flags:       uint16(inst.Flags),
				ParentOrder: inst.ParentOrder,
				ParentCRC:   inst.ParentCRC,
				Function:    inst.Function,
				Argument:    inst.Argument,
			})
		}
	}
	return declRows, instRows
}

// instanceOrder recovers the order_index a given instance was stored at
// within its D-node's Siblings map, since graph.Instance itself doesn't
// carry that index — only the map key does.
func instanceOrder(n *graph.DNode, want *graph.Instance) int {
	for idx, inst := range n.Siblings {
		if inst == want {
			return idx
		}
	}
	return 0
}

// loadStore rebuilds a graph.Store from the flattened row shapes: it creates
// every D-node first, then hands the stored children and siblings, with
// their saved order_index values, to Store.Restore.
func loadStore(declRows []declNodeRow, instRows []instanceRow) *graph.Store {
	s := graph.New()

	for _, r := range declRows {
		s.EnsureNode(r.CRC, r.Decl)
	}

	bySibling := make(map[uint32]map[int]*graph.Instance)
	for _, r := range instRows {
		inst := graph.Instance{
			Name:        r.Name,
			Level:       r.Level,
			Flags:       graph.Flags(r.Flags),
			ParentOrder: r.ParentOrder,
			ParentCRC:   r.ParentCRC,
			Function:    r.Function,
			Argument:    r.Argument,
		}
		if bySibling[r.DeclCRC] == nil {
			bySibling[r.DeclCRC] = make(map[int]*graph.Instance)
		}
		bySibling[r.DeclCRC][r.OrderIndex] = &inst
	}

	children := make(map[uint32][]graph.ChildRef)
	for _, r := range declRows {
		children[r.CRC] = decodeChildren(r.Children)
	}

	s.Restore(children, bySibling)
	return s
}
