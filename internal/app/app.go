// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	kilnfs "go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/orchestrator"
	"go.trai.ch/kiln/internal/engine/router"
	"go.trai.ch/kiln/internal/settings"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	compilers    ports.CompilerProvider
	copier       ports.FileCopier
	hasher       ports.Hasher
	openStore    ports.StoreOpener
	watchers     ports.WatcherFactory
	walker       *kilnfs.Walker
	logger       ports.Logger
	renderer     ports.Renderer
	stdout       io.Writer
	stderr       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	compilers ports.CompilerProvider,
	copier ports.FileCopier,
	hasher ports.Hasher,
	openStore ports.StoreOpener,
	watchers ports.WatcherFactory,
	walker *kilnfs.Walker,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		compilers:    compilers,
		copier:       copier,
		hasher:       hasher,
		openStore:    openStore,
		watchers:     watchers,
		walker:       walker,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithRenderer replaces the default renderer of build steps.
func (a *App) WithRenderer(r ports.Renderer) *App {
	a.renderer = r
	return a
}

// WithOutput sets the writers of the default renderer.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// ConfigPath overrides manifest discovery when set.
	ConfigPath string
	// Watch keeps rebuilding changed files after the full build.
	Watch bool
}

// Build runs a full build and, with opts.Watch, watches the source tree until ctx is done.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	s := settings.FromContext(ctx)
	a.configureLogger(s)

	project, err := a.loadProject(opts.ConfigPath)
	if err != nil {
		return err
	}

	compiler, err := a.compilers.Compiler(project.Compiler)
	if err != nil {
		return err
	}

	store, err := a.openStore(project.StorePath())
	if err != nil {
		return err
	}

	ignore, err := kilnfs.NewIgnoreMatcher(project.Paths.Source(), project.IgnorePatterns())
	if err != nil {
		return err
	}

	renderer, tracer, shutdown := a.telemetry(s)
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	orch := orchestrator.New(
		project.Paths,
		compiler,
		a.copier,
		store,
		a.hasher,
		tracer,
		a.logger,
		a.walker,
		ignore,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(gctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()

		if _, err := orch.BuildAll(gctx); err != nil {
			return errors.Join(domain.ErrBuildFailed, err)
		}

		if !opts.Watch {
			return nil
		}

		r := router.New(project.Paths, orch, a.watchers, a.logger,
			router.WithDebounce(s.Debounce),
			router.WithReady(func(ctx context.Context) {
				if _, err := orch.Refresh(ctx); err != nil {
					a.logger.Error(err)
				}
			}),
		)
		return r.Run(gctx)
	})

	return g.Wait()
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
	// Output also removes the output root.
	Output bool
}

// Clean removes the state directory and, with options.Output, the output root.
func (a *App) Clean(ctx context.Context, options CleanOptions) error {
	a.configureLogger(settings.FromContext(ctx))

	project, err := a.loadProject(options.ConfigPath)
	if err != nil {
		return err
	}

	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, domain.ErrFailedToCleanState.Error()), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	remove(project.StatePath(), "build state")

	if options.Output {
		remove(project.Paths.Output(), "output directory")
	}

	return errs
}

func (a *App) loadProject(configPath string) (*domain.Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	project, err := a.configLoader.Load(cwd, configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return project, nil
}

// telemetry returns the renderer and tracer of a build. Quiet builds render nothing.
func (a *App) telemetry(s *settings.Settings) (ports.Renderer, ports.Tracer, func(context.Context) error) {
	if s.Quiet {
		return linear.NewRenderer(io.Discard, io.Discard), telemetry.NewNoOpTracer(), func(context.Context) error { return nil }
	}

	renderer := a.renderer
	if renderer == nil {
		renderer = linear.NewRenderer(a.stdout, a.stderr)
	}

	tracer, shutdown := telemetry.Setup(renderer)
	return renderer, tracer, shutdown
}

type levelSetter interface {
	SetLevel(level slog.Level)
}

type jsonSetter interface {
	SetJSON(enable bool)
}

func (a *App) configureLogger(s *settings.Settings) {
	if l, ok := a.logger.(levelSetter); ok {
		if level, ok := logger.ParseLevel(s.EffectiveLogLevel()); ok {
			l.SetLevel(level)
		}
	}
	if l, ok := a.logger.(jsonSetter); ok {
		l.SetJSON(s.LogFormat == settings.LogFormatJSON)
	}
}
