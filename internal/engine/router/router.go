package router

import (
	"context"
	"os"
	"time"

	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Rebuilder performs the rebuild a route dispatches to.
type Rebuilder interface {
	Rebuild(ctx context.Context, target Target, file string) error
}

// Router watches the source root and dispatches each change to its route.
type Router struct {
	paths     domain.PathTable
	routes    Routes
	rebuilder Rebuilder
	watchers  ports.WatcherFactory
	logger    ports.Logger
	debounce  time.Duration
	queue     *Queue
	ready     func(ctx context.Context)
}

// Option configures a Router.
type Option func(*Router)

// WithDebounce sets the quiet period of a path before it is dispatched. Zero disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(r *Router) {
		r.debounce = d
	}
}

// WithReady sets a function run once the watcher is started and before events are consumed.
func WithReady(fn func(ctx context.Context)) Option {
	return func(r *Router) {
		r.ready = fn
	}
}

// WithRoutes replaces the default route table.
func WithRoutes(routes Routes) Option {
	return func(r *Router) {
		r.routes = routes
	}
}

// New creates a Router for the project layout.
func New(
	paths domain.PathTable,
	rebuilder Rebuilder,
	watchers ports.WatcherFactory,
	logger ports.Logger,
	opts ...Option,
) *Router {
	r := &Router{
		paths:     paths,
		routes:    DefaultRoutes(paths),
		rebuilder: rebuilder,
		watchers:  watchers,
		logger:    logger,
		debounce:  watcher.DefaultDebounceWindow,
		queue:     NewQueue(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run watches until ctx is done, then waits for running rebuilds and returns.
// Rebuild failures are logged and do not stop watching.
func (r *Router) Run(ctx context.Context) error {
	root := r.paths.Source()
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return zerr.With(domain.ErrWatcherStartFailed, "dir", root)
	}

	w, err := r.watchers()
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := w.Start(watchCtx, root); err != nil {
		_ = w.Stop()
		return err
	}

	r.logger.Info("watching " + root)

	if r.ready != nil {
		r.ready(ctx)
	}

	debouncer := watcher.NewDebouncer(r.debounce, func(path string) {
		r.queue.Enqueue(path, func() { r.Handle(ctx, path) })
	})

	g, gctx := errgroup.WithContext(watchCtx)
	g.Go(func() error {
		defer cancel()
		for event := range w.Events() {
			if rel, ok := r.paths.Rel(event.Path); ok {
				r.logger.Debug("change detected: " + rel)
			}
			debouncer.Add(event.Path)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return w.Stop()
	})

	err = g.Wait()
	debouncer.Stop()
	r.queue.Wait()

	return err
}

// Handle classifies path and runs its rebuild. Paths outside the source root are ignored.
// A directory rebuilds every step whose sources it holds.
func (r *Router) Handle(ctx context.Context, path string) {
	rel, ok := r.paths.Rel(path)
	if !ok || rel == "" || rel == "." {
		return
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		for _, d := range DirectoryDispatches(r.paths, rel) {
			if err := r.rebuilder.Rebuild(ctx, d.Target, d.File); err != nil {
				r.logger.Error(zerr.With(err, "path", rel))
			}
		}
		return
	}

	route, ok := r.routes.Classify(rel)
	if !ok || route.Target.Kind == TargetIgnore {
		return
	}

	file := rel
	if route.Arg != nil {
		file = route.Arg(rel)
	}

	if err := r.rebuilder.Rebuild(ctx, route.Target, file); err != nil {
		r.logger.Error(zerr.With(err, "path", rel))
	}
}
