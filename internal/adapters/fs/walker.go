package fs

import (
	iofs "io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// IgnoreMatcher matches paths below a base directory against doublestar globs.
// Patterns without a slash also match the base name at any depth.
type IgnoreMatcher struct {
	base     string
	patterns []string
}

// NewIgnoreMatcher validates patterns and returns a matcher rooted at base.
func NewIgnoreMatcher(base string, patterns []string) (*IgnoreMatcher, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, zerr.With(domain.ErrInvalidIgnorePattern, "pattern", p)
		}
	}
	return &IgnoreMatcher{base: base, patterns: patterns}, nil
}

// Match reports whether path is ignored. Paths outside base never match.
func (m *IgnoreMatcher) Match(path string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	rel, err := filepath.Rel(m.base, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	name := filepath.Base(path)

	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, name); ok {
				return true
			}
		}
	}
	return false
}

// Walker enumerates files below a directory.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every file below root in lexical order.
// VCS and node_modules directories are skipped, as is everything ignore matches.
// Entries that vanish or cannot be read during the walk are skipped.
func (w *Walker) WalkFiles(root string, ignore *IgnoreMatcher) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != root && (SkipDir(d.Name()) || ignore.Match(path)) {
					return filepath.SkipDir
				}
				return nil
			}

			if ignore.Match(path) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// SkipDir reports whether a directory name is never part of a source tree.
func SkipDir(name string) bool {
	switch name {
	case ".git", ".jj", "node_modules", domain.KilnDirName:
		return true
	default:
		return false
	}
}
