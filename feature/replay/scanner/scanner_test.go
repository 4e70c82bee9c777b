package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("replay-bytes"), 0o644))
}

func TestList_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.SC2Replay"))
	writeFile(t, filepath.Join(dir, "b.sc2replay")) // extension match is case-insensitive
	writeFile(t, filepath.Join(dir, "notes.txt"))

	paths, err := NewFileScanner().List(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestList_NonRecursiveIgnoresSubfolders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.SC2Replay"))
	writeFile(t, filepath.Join(dir, "sub", "nested.SC2Replay"))

	paths, err := NewFileScanner().List(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "top.SC2Replay")}, paths)
}

func TestList_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.SC2Replay"))
	writeFile(t, filepath.Join(dir, "sub", "nested.SC2Replay"))

	paths, err := NewFileScanner().List(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestList_MissingRoot(t *testing.T) {
	_, err := NewFileScanner().List(context.Background(), filepath.Join(t.TempDir(), "gone"), false)
	assert.Error(t, err)
}

func TestNewestReplay(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.SC2Replay")
	newer := filepath.Join(dir, "newer.SC2Replay")
	writeFile(t, old)
	writeFile(t, newer)
	writeFile(t, filepath.Join(dir, "ignored.txt"))

	// Directory mtime resolution can be coarse; set explicit times.
	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, base, base))
	require.NoError(t, os.Chtimes(newer, base.Add(time.Minute), base.Add(time.Minute)))

	loc := &NewestFileLocator{Root: dir}
	path, err := loc.NewestReplay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, newer, path)
}

func TestNewestReplay_EmptyFolder(t *testing.T) {
	loc := &NewestFileLocator{Root: t.TempDir()}
	path, err := loc.NewestReplay(context.Background())
	require.NoError(t, err)
	assert.Empty(t, path)
}
