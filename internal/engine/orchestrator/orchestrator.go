// Package orchestrator sequences full builds and dispatches incremental rebuilds.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	kilnfs "go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/assets"
	"go.trai.ch/kiln/internal/engine/builder"
	"go.trai.ch/kiln/internal/engine/router"
	"go.trai.ch/zerr"
)

var _ router.Rebuilder = (*Orchestrator)(nil)

// Orchestrator owns the change cache of a process and shares it with every step.
type Orchestrator struct {
	paths   domain.PathTable
	changes *kilnfs.ChangeCache
	builder *builder.Builder
	assets  *assets.Synchronizer
	store   ports.BuildInfoStore
	hasher  ports.Hasher
	tracer  ports.Tracer
	logger  ports.Logger
	now     func() time.Time
}

// New creates an Orchestrator. store may be nil, in which case nothing is recorded.
func New(
	paths domain.PathTable,
	compiler ports.Compiler,
	copier ports.FileCopier,
	store ports.BuildInfoStore,
	hasher ports.Hasher,
	tracer ports.Tracer,
	logger ports.Logger,
	walker *kilnfs.Walker,
	ignore *kilnfs.IgnoreMatcher,
) *Orchestrator {
	changes := kilnfs.NewChangeCache()
	return &Orchestrator{
		paths:   paths,
		changes: changes,
		builder: builder.New(paths, compiler, changes, logger),
		assets:  assets.New(paths, copier, changes, walker, ignore, logger),
		store:   store,
		hasher:  hasher,
		tracer:  tracer,
		logger:  logger,
		now:     time.Now,
	}
}

type step struct {
	name string
	run  func(ctx context.Context) ([]domain.Artifact, error)
}

// plan returns the steps of a full build in execution order.
func (o *Orchestrator) plan() []step {
	compile := func(c domain.Category) step {
		return step{name: string(c), run: func(ctx context.Context) ([]domain.Artifact, error) {
			return o.builder.Build(ctx, c, "")
		}}
	}

	steps := []step{
		compile(domain.CategoryConstants),
		compile(domain.CategoryDependencyShim),
	}
	for _, page := range o.paths.PageScripts() {
		steps = append(steps, step{
			name: string(domain.CategoryPageScript) + ":" + page,
			run: func(ctx context.Context) ([]domain.Artifact, error) {
				return o.builder.BuildPageScript(ctx, page)
			},
		})
	}
	return append(steps,
		compile(domain.CategorySharedPackage),
		compile(domain.CategoryUIForm),
		step{name: domain.KindHTML, run: func(ctx context.Context) ([]domain.Artifact, error) {
			return o.assets.SyncHTML(ctx, "")
		}},
		step{name: "styles", run: func(ctx context.Context) ([]domain.Artifact, error) {
			return o.assets.SyncStyles(ctx, "")
		}},
		step{name: "assets", run: func(ctx context.Context) ([]domain.Artifact, error) {
			return o.assets.SyncAssets(ctx, "")
		}},
	)
}

// BuildAll forgets every observation and runs every step in order.
// The first failing step aborts the build; artifacts written before it are returned.
func (o *Orchestrator) BuildAll(ctx context.Context) ([]domain.Artifact, error) {
	o.changes.Clear()

	steps := o.plan()
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.name
	}
	o.tracer.EmitPlan(ctx, names)

	var all []domain.Artifact
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		artifacts, err := o.runStep(ctx, s)
		all = append(all, artifacts...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

// Refresh runs every step without forgetting observations, so only files changed since
// they were last observed are written. All steps share one detached span.
func (o *Orchestrator) Refresh(ctx context.Context) ([]domain.Artifact, error) {
	steps := o.plan()
	return o.runStep(ctx, step{name: "refresh", run: func(ctx context.Context) ([]domain.Artifact, error) {
		var all []domain.Artifact
		for _, s := range steps {
			if err := ctx.Err(); err != nil {
				return all, err
			}
			artifacts, err := s.run(ctx)
			all = append(all, artifacts...)
			if err != nil {
				return all, zerr.With(err, "step", s.name)
			}
		}
		return all, nil
	}}, ports.WithDetached())
}

// Rebuild runs the step a watch route selected, scoped to file.
func (o *Orchestrator) Rebuild(ctx context.Context, target router.Target, file string) error {
	var s step
	switch target.Kind {
	case router.TargetCompile:
		s = step{name: string(target.Category), run: func(ctx context.Context) ([]domain.Artifact, error) {
			return o.builder.Build(ctx, target.Category, file)
		}}
	case router.TargetHTML:
		s = step{name: domain.KindHTML, run: func(ctx context.Context) ([]domain.Artifact, error) {
			return o.assets.SyncHTML(ctx, file)
		}}
	case router.TargetStyles:
		s = step{name: "styles", run: func(ctx context.Context) ([]domain.Artifact, error) {
			return o.assets.SyncStyles(ctx, file)
		}}
	case router.TargetAssets:
		s = step{name: "assets", run: func(ctx context.Context) ([]domain.Artifact, error) {
			return o.assets.SyncAssets(ctx, file)
		}}
	default:
		return nil
	}

	if file != "" {
		s.name += " " + file
	}
	_, err := o.runStep(ctx, s, ports.WithDetached())
	return err
}

func (o *Orchestrator) runStep(ctx context.Context, s step, opts ...ports.SpanOption) ([]domain.Artifact, error) {
	ctx, span := o.tracer.Start(ctx, s.name, opts...)
	defer span.End()

	artifacts, err := s.run(ctx)
	span.SetAttribute(ports.AttrArtifacts, len(artifacts))
	o.report(span, artifacts)

	if recErr := o.record(artifacts); recErr != nil && err == nil {
		err = recErr
	}
	if err != nil {
		span.RecordError(err)
		return artifacts, err
	}
	return artifacts, nil
}

// report writes one line per artifact, relative to the output root.
func (o *Orchestrator) report(w io.Writer, artifacts []domain.Artifact) {
	for _, a := range artifacts {
		rel, err := filepath.Rel(o.paths.Output(), a.Output)
		if err != nil {
			rel = a.Output
		}
		_, _ = fmt.Fprintln(w, filepath.ToSlash(rel))
	}
}

// record stores the build info of every artifact.
func (o *Orchestrator) record(artifacts []domain.Artifact) error {
	if o.store == nil {
		return nil
	}

	for _, a := range artifacts {
		info := domain.BuildInfo{
			Output:    a.Output,
			Source:    a.Source,
			Kind:      a.Kind,
			Timestamp: o.now(),
		}
		if o.hasher != nil {
			hash, err := o.hasher.ComputeFileHash(a.Output)
			if err != nil {
				return zerr.With(err, "output", a.Output)
			}
			info.OutputHash = fmt.Sprintf("%016x", hash)
		}
		if err := o.store.Put(info); err != nil {
			return zerr.With(err, "output", a.Output)
		}
	}
	return nil
}
