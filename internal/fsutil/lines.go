package fsutil

import (
	"bufio"
	"os"
	"strings"

	"github.com/camuso/kabiparser/internal/kabierr"
)

// ReadLines reads path and returns its non-blank, trimmed lines in order —
// the filelist format spec §6's query `-f` names, one database path per
// line.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, kabierr.Wrap(kabierr.IOOpen, "reading filelist "+path, err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, kabierr.Wrap(kabierr.IOFormat, "reading filelist "+path, err)
	}
	return out, nil
}
