// Package fs provides file system adapters for change detection, walking, copying and hashing.
package fs

import (
	"os"
	"path/filepath"
	"sync"
	"time"
	"unique"

	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.ChangeDetector = (*ChangeCache)(nil)

// ChangeCache maps absolute file paths to their last observed modification time.
// It lives for the whole process and is only cleared at the start of a full build.
type ChangeCache struct {
	mu      sync.Mutex
	entries map[unique.Handle[string]]time.Time
}

// NewChangeCache creates an empty ChangeCache.
func NewChangeCache() *ChangeCache {
	return &ChangeCache{
		entries: make(map[unique.Handle[string]]time.Time),
	}
}

// HasChanged reports whether path exists and its modification time differs from the
// recorded one, recording the new time when it does. Stat failures and directories
// count as unchanged.
func (c *ChangeCache) HasChanged(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return false
	}

	key := unique.Make(abs)
	modTime := info.ModTime()
	if prev, ok := c.entries[key]; ok && prev.Equal(modTime) {
		return false
	}
	c.entries[key] = modTime
	return true
}

// Clear forgets every observation.
func (c *ChangeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of observed paths.
func (c *ChangeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
