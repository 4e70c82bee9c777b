package lockfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_WritesBodyAndReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	assert.NotEmpty(t, l.RunID())

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pid=")
	assert.Contains(t, string(body), l.RunID())

	require.NoError(t, l.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquire_Reacquirable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, l.Release())

	l2, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}

func TestStamp_MissingFileRevalidates(t *testing.T) {
	s := NewStamp(filepath.Join(t.TempDir(), "validation.stamp"))
	assert.True(t, s.Last().IsZero())
	assert.True(t, s.ShouldRevalidate(time.Hour))
}

func TestStamp_TouchSuppressesRevalidation(t *testing.T) {
	s := NewStamp(filepath.Join(t.TempDir(), "validation.stamp"))
	require.NoError(t, s.Touch())

	assert.False(t, s.Last().IsZero())
	assert.False(t, s.ShouldRevalidate(time.Hour))
	assert.True(t, s.ShouldRevalidate(0))
}

func TestStamp_CorruptFileRevalidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation.stamp")
	require.NoError(t, os.WriteFile(path, []byte("not a timestamp"), 0o644))

	s := NewStamp(path)
	assert.True(t, s.Last().IsZero())
	assert.True(t, s.ShouldRevalidate(time.Hour))
}
