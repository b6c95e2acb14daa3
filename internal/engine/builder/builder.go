// Package builder compiles the script categories of a project.
package builder

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Builder compiles the changed entrypoints of a category with the category's options.
type Builder struct {
	paths    domain.PathTable
	compiler ports.Compiler
	changes  ports.ChangeDetector
	logger   ports.Logger
}

// New creates a Builder. changes is shared with every other consumer of the build.
func New(
	paths domain.PathTable,
	compiler ports.Compiler,
	changes ports.ChangeDetector,
	logger ports.Logger,
) *Builder {
	return &Builder{
		paths:    paths,
		compiler: compiler,
		changes:  changes,
		logger:   logger,
	}
}

// Build compiles the changed entrypoints of category c.
// With specificFile set, only that base name inside the category directory is considered.
// A missing category directory is not an error.
func (b *Builder) Build(ctx context.Context, c domain.Category, specificFile string) ([]domain.Artifact, error) {
	if !c.Valid() {
		return nil, zerr.With(domain.ErrUnknownCategory, "category", string(c))
	}

	if c == domain.CategoryPageScript {
		return b.buildPageScripts(ctx, specificFile)
	}

	srcDir, _ := b.paths.SourceDir(c)
	outDir, _ := b.paths.OutputDir(c)

	if !isDir(srcDir) {
		return nil, nil
	}

	candidates, err := entrypoints(srcDir, specificFile)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrOutputDirCreateFailed.Error()), "dir", outDir)
	}

	var artifacts []domain.Artifact
	for _, entry := range candidates {
		artifact, ok, err := b.compile(ctx, c, entry, outDir)
		if err != nil {
			return artifacts, err
		}
		if ok {
			artifacts = append(artifacts, artifact)
		}
	}

	return artifacts, nil
}

// BuildPageScript compiles one declared page script into the scripts output directory.
func (b *Builder) BuildPageScript(ctx context.Context, name string) ([]domain.Artifact, error) {
	if !b.paths.IsPageScript(name) {
		return nil, zerr.With(domain.ErrUnknownPage, "page", name)
	}

	srcDir := b.paths.Scripts()
	if !isDir(srcDir) {
		return nil, nil
	}

	outDir := b.paths.OutScripts()
	if err := os.MkdirAll(outDir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrOutputDirCreateFailed.Error()), "dir", outDir)
	}

	entry := filepath.Join(srcDir, name+domain.ScriptExt)
	artifact, ok, err := b.compile(ctx, domain.CategoryPageScript, entry, outDir)
	if err != nil || !ok {
		return nil, err
	}
	return []domain.Artifact{artifact}, nil
}

func (b *Builder) buildPageScripts(ctx context.Context, specificFile string) ([]domain.Artifact, error) {
	if specificFile != "" {
		if filepath.Ext(specificFile) != domain.ScriptExt {
			return nil, nil
		}
		return b.BuildPageScript(ctx, domain.BaseName(specificFile))
	}

	var artifacts []domain.Artifact
	for _, name := range b.paths.PageScripts() {
		built, err := b.BuildPageScript(ctx, name)
		artifacts = append(artifacts, built...)
		if err != nil {
			return artifacts, err
		}
	}
	return artifacts, nil
}

// compile builds entry when it changed. It reports false when entry was skipped.
func (b *Builder) compile(
	ctx context.Context,
	c domain.Category,
	entry, outDir string,
) (domain.Artifact, bool, error) {
	if !b.changes.HasChanged(entry) {
		return domain.Artifact{}, false, nil
	}

	spec := domain.NewBuildTargetSpec(c, entry, outDir)
	if err := b.compiler.Compile(ctx, spec); err != nil {
		return domain.Artifact{}, false, zerr.With(err, "category", c.Label())
	}

	b.logger.Info(c.Label() + " updated: " + spec.OutputFileName)

	return domain.Artifact{
		Kind:   string(c),
		Source: entry,
		Output: spec.OutputPath(),
	}, true, nil
}

// entrypoints lists the compilable files directly inside dir in lexical order.
func entrypoints(dir, specificFile string) ([]string, error) {
	if specificFile != "" {
		name := filepath.Base(specificFile)
		if filepath.Ext(name) != domain.ScriptExt {
			return nil, nil
		}
		return []string{filepath.Join(dir, name)}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWalkFailed.Error()), "dir", dir)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != domain.ScriptExt {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
