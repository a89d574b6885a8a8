// Package fsutil holds the small filesystem helpers both CLIs share:
// shell-independent glob expansion for file arguments, and scoped resource
// release. It is deliberately much smaller than the teacher's own
// filesystem-walking machinery (core/filewalker.go) — this module's CLIs
// take a flat list of file arguments (spec §6), not a directory to crawl.
package fsutil

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/camuso/kabiparser/internal/kabierr"
)

// ExpandArgs expands every pattern in args against the filesystem rooted
// at the current working directory, exactly as the teacher's filewalker
// uses doublestar for pattern matching — but via FilepathGlob, since here
// we are expanding arguments, not matching against an already-walked
// tree. An argument that is not itself a glob (no matches, because it is
// a literal existing path, or a pattern with no hits yet) is passed
// through unchanged rather than dropped, so a plain filename still works.
func ExpandArgs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range args {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, kabierr.Wrap(kabierr.ArgMissing, "invalid file pattern "+pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	sort.Strings(out)
	return out, nil
}
