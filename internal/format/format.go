// Package format renders query-engine output rows, matching spec §4.F: a
// small per-level-tag duplicate cache and two emission orders (bottom-up
// traversals consumed LIFO, top-down traversals consumed FIFO), each with a
// column-normalized variant.
//
// Grounded on the teacher-adjacent original rowman class: a small,
// fixed-size array of "last row seen at this tag" rather than a generic
// dedup structure, since there are exactly four tags and the cache only
// ever needs to remember one row per tag.
package format

import (
	"fmt"
	"strings"

	"github.com/camuso/kabiparser/internal/graph"
)

// Tag is the row's display class, derived from its flags.
type Tag int

const (
	TagFile Tag = iota
	TagExported
	TagArg
	TagNested
	tagCount
)

// Row is one line of query output: the declaration text, the use-site name,
// the nesting level, and the flags that decide its Tag and print form.
type Row struct {
	Level int
	Flags graph.Flags
	Decl  string
	Name  string
}

// TagFor derives a Row's display tag from its flags.
func TagFor(f graph.Flags) Tag {
	switch {
	case f.Has(graph.FlagFile):
		return TagFile
	case f.Has(graph.FlagExported):
		return TagExported
	case f.Has(graph.FlagArg), f.Has(graph.FlagReturn):
		return TagArg
	default:
		return TagNested
	}
}

// Formatter holds the duplicate-suppression cache (one remembered row per
// tag) across a single query's output.
type Formatter struct {
	// Verbose controls whether NESTED rows print at all — §4.F: "only
	// emitted in verbose mode."
	Verbose bool

	last [tagCount]*Row
}

// New returns a Formatter with verbose descendant rows enabled or disabled.
func New(verbose bool) *Formatter {
	return &Formatter{Verbose: verbose}
}

// Reset clears the duplicate cache. A FILE row does this automatically
// (§4.F: "file-level emission clears the entire cache").
func (f *Formatter) Reset() {
	f.last = [tagCount]*Row{}
}

// PutRowsFromBack renders rows consumed LIFO (last element first) — the
// order a bottom-up, walk-up-from-deepest traversal needs so the root ends
// up printed first.
func (f *Formatter) PutRowsFromBack(rows []Row) string {
	var sb strings.Builder
	for i := len(rows) - 1; i >= 0; i-- {
		f.put(&sb, rows[i])
	}
	return sb.String()
}

// PutRowsFromFront renders rows consumed FIFO, in the order a top-down
// pre-order walk already produced them.
func (f *Formatter) PutRowsFromFront(rows []Row) string {
	var sb strings.Builder
	for i := range rows {
		f.put(&sb, rows[i])
	}
	return sb.String()
}

// PutRowsFromBackNormalized is PutRowsFromBack with every row's Level
// shifted so the first row printed (the last element of rows) starts at
// column 0 — used for struct-member listings that shouldn't carry the
// absolute nesting depth of wherever they were found.
func (f *Formatter) PutRowsFromBackNormalized(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	return f.PutRowsFromBack(normalize(rows, rows[len(rows)-1].Level))
}

// PutRowsFromFrontNormalized is PutRowsFromFront, normalized against the
// first element's Level.
func (f *Formatter) PutRowsFromFrontNormalized(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	return f.PutRowsFromFront(normalize(rows, rows[0].Level))
}

func normalize(rows []Row, base int) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		r.Level -= base
		out[i] = r
	}
	return out
}

func (f *Formatter) put(sb *strings.Builder, r Row) {
	tag := TagFor(r.Flags)

	if tag == TagFile {
		f.Reset()
	}

	if tag == TagNested && !f.Verbose {
		return
	}

	if last := f.last[tag]; last != nil && *last == r {
		return
	}
	cp := r
	f.last[tag] = &cp

	switch tag {
	case TagFile:
		fmt.Fprintf(sb, "FILE: %s\n", r.Decl)
	case TagExported:
		fmt.Fprintf(sb, " EXPORTED: %s %s\n", r.Decl, r.Name)
	case TagArg:
		if r.Flags.Has(graph.FlagReturn) {
			fmt.Fprintf(sb, "  RETURN: %s %s\n", r.Decl, r.Name)
		} else {
			fmt.Fprintf(sb, "  ARG: %s %s\n", r.Decl, r.Name)
		}
	case TagNested:
		fmt.Fprintf(sb, "%s%s %s\n", strings.Repeat(" ", r.Level), r.Decl, r.Name)
	}
}
