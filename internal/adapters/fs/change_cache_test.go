package fs_test

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestChangeCache_TrueOnceThenFalse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locale.ts")
	writeFile(t, path, "export const a = 1")

	cache := fs.NewChangeCache()

	assert.True(t, cache.HasChanged(path))
	assert.False(t, cache.HasChanged(path))
	assert.Equal(t, 1, cache.Len())
}

func TestChangeCache_MissingPath(t *testing.T) {
	cache := fs.NewChangeCache()

	assert.False(t, cache.HasChanged(filepath.Join(t.TempDir(), "gone.ts")))
	assert.Zero(t, cache.Len())
}

func TestChangeCache_Directory(t *testing.T) {
	cache := fs.NewChangeCache()

	assert.False(t, cache.HasChanged(t.TempDir()))
}

func TestChangeCache_ModifiedTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modal.ts")
	writeFile(t, path, "export {}")

	cache := fs.NewChangeCache()
	require.True(t, cache.HasChanged(path))

	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	assert.True(t, cache.HasChanged(path))
	assert.False(t, cache.HasChanged(path))
}

func TestChangeCache_SubSecondPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modal.ts")
	writeFile(t, path, "export {}")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, base, base))

	cache := fs.NewChangeCache()
	require.True(t, cache.HasChanged(path))

	bumped := base.Add(10 * time.Millisecond)
	require.NoError(t, os.Chtimes(path, bumped, bumped))

	assert.True(t, cache.HasChanged(path))
}

func TestChangeCache_RelativeAndAbsoluteShareEntry(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "a.css"), "body{}")

	cache := fs.NewChangeCache()

	assert.True(t, cache.HasChanged("a.css"))
	assert.False(t, cache.HasChanged(filepath.Join(dir, "a.css")))
}

func TestChangeCache_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ts")
	writeFile(t, path, "x")

	cache := fs.NewChangeCache()
	require.True(t, cache.HasChanged(path))

	cache.Clear()

	assert.Zero(t, cache.Len())
	assert.True(t, cache.HasChanged(path))
}

func TestChangeCache_ConcurrentCheckReportsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ts")
	writeFile(t, path, "x")

	cache := fs.NewChangeCache()

	var changed atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Go(func() {
			if cache.HasChanged(path) {
				changed.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), changed.Load())
}
