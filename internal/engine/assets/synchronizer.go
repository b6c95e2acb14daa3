// Package assets copies page documents, style sheets and static media into the output tree.
package assets

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	kilnfs "go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Synchronizer copies changed files forward. It never deletes outputs.
type Synchronizer struct {
	paths   domain.PathTable
	copier  ports.FileCopier
	changes ports.ChangeDetector
	walker  *kilnfs.Walker
	ignore  *kilnfs.IgnoreMatcher
	logger  ports.Logger
}

// New creates a Synchronizer. ignore may be nil.
func New(
	paths domain.PathTable,
	copier ports.FileCopier,
	changes ports.ChangeDetector,
	walker *kilnfs.Walker,
	ignore *kilnfs.IgnoreMatcher,
	logger ports.Logger,
) *Synchronizer {
	return &Synchronizer{
		paths:   paths,
		copier:  copier,
		changes: changes,
		walker:  walker,
		ignore:  ignore,
		logger:  logger,
	}
}

// SyncHTML copies the page documents of every declared page directory.
// With specific set, only that base name is considered in each page directory.
func (s *Synchronizer) SyncHTML(ctx context.Context, specific string) ([]domain.Artifact, error) {
	var artifacts []domain.Artifact
	for _, page := range s.paths.PageDirectories() {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}

		srcDir := s.paths.PageSource(page)
		if !isDir(srcDir) {
			continue
		}

		copied, err := s.syncFlat(srcDir, s.paths.OutPage(page), specific, domain.HTMLExt, domain.KindHTML)
		artifacts = append(artifacts, copied...)
		if err != nil {
			return artifacts, err
		}
	}
	return artifacts, nil
}

// SyncStyles copies the style sheets of the styles directory.
func (s *Synchronizer) SyncStyles(ctx context.Context, specific string) ([]domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	srcDir := s.paths.Styles()
	if !isDir(srcDir) {
		return nil, nil
	}
	return s.syncFlat(srcDir, s.paths.OutStyles(), specific, domain.StyleExt, domain.KindStyle)
}

// SyncAssets mirrors the assets tree, or the file or directory specific names inside it.
// Script sources and the style sheets SyncStyles copies are left to their own steps.
func (s *Synchronizer) SyncAssets(ctx context.Context, specific string) ([]domain.Artifact, error) {
	srcRoot := s.paths.Assets()
	if !isDir(srcRoot) {
		return nil, nil
	}

	outRoot := s.paths.OutAssets()
	if err := mkdir(outRoot); err != nil {
		return nil, err
	}

	target := srcRoot
	if specific != "" {
		target = filepath.Join(srcRoot, filepath.FromSlash(specific))
		if rel, err := filepath.Rel(srcRoot, target); err != nil || !filepath.IsLocal(rel) {
			return nil, nil
		}
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWalkFailed.Error()), "path", target)
	}

	var files []string
	if info.IsDir() {
		for file := range s.walker.WalkFiles(target, s.ignore) {
			files = append(files, file)
		}
	} else if !s.ignore.Match(target) {
		files = append(files, target)
	}

	var artifacts []domain.Artifact
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}

		if s.owned(src) {
			continue
		}

		rel, err := filepath.Rel(srcRoot, src)
		if err != nil {
			continue
		}

		artifact, ok, err := s.copyIfChanged(src, filepath.Join(outRoot, rel), domain.KindAsset, filepath.ToSlash(rel))
		if err != nil {
			return artifacts, err
		}
		if ok {
			artifacts = append(artifacts, artifact)
		}
	}
	return artifacts, nil
}

// syncFlat copies files with extension ext directly inside srcDir to outDir.
func (s *Synchronizer) syncFlat(srcDir, outDir, specific, ext, kind string) ([]domain.Artifact, error) {
	if err := mkdir(outDir); err != nil {
		return nil, err
	}

	var names []string
	if specific != "" {
		if filepath.Ext(specific) != ext {
			return nil, nil
		}
		names = []string{filepath.Base(specific)}
	} else {
		entries, err := os.ReadDir(srcDir)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrWalkFailed.Error()), "dir", srcDir)
		}
		for _, e := range entries {
			if e.Type().IsRegular() && filepath.Ext(e.Name()) == ext {
				names = append(names, e.Name())
			}
		}
	}

	var artifacts []domain.Artifact
	for _, name := range names {
		artifact, ok, err := s.copyIfChanged(filepath.Join(srcDir, name), filepath.Join(outDir, name), kind, name)
		if err != nil {
			return artifacts, err
		}
		if ok {
			artifacts = append(artifacts, artifact)
		}
	}
	return artifacts, nil
}

// owned reports whether src is produced by a compile or style step rather than copied as media.
func (s *Synchronizer) owned(src string) bool {
	if filepath.Ext(src) == domain.ScriptExt && within(s.paths.Scripts(), src) {
		return true
	}
	return filepath.Ext(src) == domain.StyleExt && filepath.Dir(src) == s.paths.Styles()
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && filepath.IsLocal(rel)
}

func (s *Synchronizer) copyIfChanged(src, dst, kind, label string) (domain.Artifact, bool, error) {
	if !s.changes.HasChanged(src) {
		return domain.Artifact{}, false, nil
	}

	if err := s.copier.CopyFile(src, dst); err != nil {
		return domain.Artifact{}, false, err
	}

	s.logger.Info(kind + " updated: " + label)

	return domain.Artifact{Kind: kind, Source: src, Output: dst}, true, nil
}

func mkdir(dir string) error {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrOutputDirCreateFailed.Error()), "dir", dir)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
