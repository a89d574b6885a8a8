package store

import "github.com/camuso/kabiparser/internal/graph"

// Compact merges N previously-built segment stores (each one builder run's
// full decl_nodes/instances dump) into a single consolidated graph.Store,
// per §6's compaction contract: first store's D-node identity wins for any
// crc two segments share, later segments' siblings are appended rather than
// overwritten, and children lists are unioned rather than replaced.
func Compact(segments []*graph.Store) *graph.Store {
	merged := graph.New()
	for _, seg := range segments {
		merged.MergeFrom(seg)
	}
	return merged
}

// CompactBackends loads every segment file through backend, in order, then
// writes the merged result back out through out. The builder's
// -c/--cumulative path does not go through it; it calls graph.Store.MergeFrom
// directly.
func CompactBackends(segments []Backend, out Backend) error {
	stores := make([]*graph.Store, 0, len(segments))
	for _, b := range segments {
		s, err := b.Load()
		if err != nil {
			return err
		}
		stores = append(stores, s)
	}
	return out.Save(Compact(stores))
}
