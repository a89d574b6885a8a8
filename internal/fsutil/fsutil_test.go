package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandArgsGlobsAndDedupes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.i", "b.i", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	got, err := ExpandArgs([]string{filepath.Join(dir, "*.i"), filepath.Join(dir, "a.i")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.i"), filepath.Join(dir, "b.i")}, got)
}

func TestExpandArgsPassesThroughNonMatchingLiteral(t *testing.T) {
	got, err := ExpandArgs([]string{"/does/not/exist.i"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/does/not/exist.i"}, got)
}

func TestOpenScopedClosesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	var read string
	err := OpenScoped(path, func(f *os.File) error {
		buf := make([]byte, 5)
		n, err := f.Read(buf)
		read = string(buf[:n])
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", read)
}

func TestOpenScopedPropagatesOpenError(t *testing.T) {
	err := OpenScoped("/does/not/exist", func(*os.File) error { return nil })
	assert.Error(t, err)
}

func TestCreateScopedWritesAndCloses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	err := CreateScoped(path, func(f *os.File) error {
		_, err := f.WriteString("written")
		return err
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "written", string(got))
}

func TestReadLinesSkipsBlanksAndTrims(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filelist")
	require.NoError(t, os.WriteFile(path, []byte("  one.db  \n\nsub/two.db\n"), 0o644))

	got, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one.db", "sub/two.db"}, got)
}

func TestReadLinesPropagatesOpenError(t *testing.T) {
	_, err := ReadLines("/does/not/exist")
	assert.Error(t, err)
}
