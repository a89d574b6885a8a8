package fsutil

import "os"

// OpenScoped opens path and hands the file to fn, closing it on every exit
// path including a panic unwinding through fn. This is the one idea kept
// from the teacher's core/atomicwriter.go — release what you open, on
// every exit path — without that file's locking and backup machinery,
// which exists there to protect a shared file against concurrent writers
// that have no equivalent here (spec §5: the builder runs single-threaded,
// one datafile, no concurrent mutation).
func OpenScoped(path string, fn func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

// CreateScoped is OpenScoped's write-side counterpart.
func CreateScoped(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}
