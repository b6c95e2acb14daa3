package orchestrator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/cas"
	kilnfs "go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/orchestrator"
	"go.trai.ch/kiln/internal/engine/router"
	"go.uber.org/mock/gomock"
)

// fakeCompiler writes a stub output for every entrypoint it is asked to compile.
type fakeCompiler struct {
	mu    sync.Mutex
	specs []domain.BuildTargetSpec
	fail  map[string]error
}

func (c *fakeCompiler) Compile(_ context.Context, spec domain.BuildTargetSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs = append(c.specs, spec)
	if err := c.fail[filepath.Base(spec.Entrypoint)]; err != nil {
		return err
	}
	return os.WriteFile(spec.OutputPath(), []byte("// "+spec.Name()+"\n"), 0o600)
}

func (c *fakeCompiler) Specs() []domain.BuildTargetSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.BuildTargetSpec(nil), c.specs...)
}

func (c *fakeCompiler) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs = nil
}

type fixture struct {
	root     string
	paths    domain.PathTable
	compiler *fakeCompiler
	store    *cas.Store
	orch     *orchestrator.Orchestrator
}

func newFixture(t *testing.T, pagesRoot string) *fixture {
	t.Helper()
	root := t.TempDir()

	paths := domain.NewPathTable(filepath.Join(root, "src"), filepath.Join(root, "dist"), domain.Pages{
		Scripts:     domain.DefaultPageScripts(),
		Directories: domain.DefaultPageDirectories(),
		Root:        pagesRoot,
	})

	store, err := cas.NewStore(domain.DefaultStorePath(root))
	require.NoError(t, err)

	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Info(gomock.Any()).AnyTimes()

	f := &fixture{
		root:     root,
		paths:    paths,
		compiler: &fakeCompiler{fail: map[string]error{}},
		store:    store,
	}
	f.orch = orchestrator.New(
		paths,
		f.compiler,
		kilnfs.NewCopier(),
		store,
		kilnfs.NewHasher(),
		telemetry.NewNoOpTracer(),
		logger,
		kilnfs.NewWalker(),
		nil,
	)
	return f
}

func (f *fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.paths.Source(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (f *fixture) out(rel string) string {
	return filepath.Join(f.paths.Output(), filepath.FromSlash(rel))
}

func outputs(artifacts []domain.Artifact) []string {
	out := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, a.Output)
	}
	return out
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	f.write(t, "constants/locale.ts", "export const locale = 'en'\n")
	f.write(t, "assets/scripts/main.ts", "import './packages/modal'\n")
	f.write(t, "assets/scripts/packages/modal.ts", "export {}\n")
	f.write(t, "assets/scripts/ui/password.ts", "export {}\n")
	f.write(t, "main/index.html", "<html></html>\n")
	f.write(t, "assets/styles/site.css", "body {}\n")
	f.write(t, "assets/images/logo.svg", "<svg/>\n")
}

func TestBuildAll_Sequence(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.seed(t)

	artifacts, err := f.orch.BuildAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		f.out("constants/locale.js"),
		f.out("assets/scripts/main.js"),
		f.out("assets/scripts/packages/modal.js"),
		f.out("assets/scripts/ui/password.js"),
		f.out("main/index.html"),
		f.out("assets/styles/site.css"),
		f.out("assets/images/logo.svg"),
	}, outputs(artifacts))

	for _, a := range artifacts {
		assert.FileExists(t, a.Output)
	}
}

func TestBuildAll_Idempotence(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.seed(t)
	ctx := context.Background()

	first, err := f.orch.BuildAll(ctx)
	require.NoError(t, err)
	firstCompiles := len(f.compiler.Specs())
	require.Equal(t, 4, firstCompiles)

	f.compiler.Reset()
	second, err := f.orch.BuildAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, outputs(first), outputs(second))
	assert.Len(t, f.compiler.Specs(), firstCompiles)

	f.compiler.Reset()
	third, err := f.orch.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, third)
	assert.Empty(t, f.compiler.Specs())
}

func TestBuildAll_MissingDirectories(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.write(t, "constants/locale.ts", "export {}\n")

	artifacts, err := f.orch.BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	for _, spec := range f.compiler.Specs() {
		assert.NotEqual(t, domain.CategoryDependencyShim, spec.Category)
	}
}

func TestBuildAll_EmptySource(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")

	artifacts, err := f.orch.BuildAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestBuildAll_CopyForwardOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	src := f.write(t, "main/index.html", "<html></html>\n")
	ctx := context.Background()

	_, err := f.orch.BuildAll(ctx)
	require.NoError(t, err)
	require.FileExists(t, f.out("main/index.html"))

	require.NoError(t, os.Remove(src))

	artifacts, err := f.orch.BuildAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, artifacts)
	assert.FileExists(t, f.out("main/index.html"))
}

func TestBuildAll_AbortsOnFirstFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.seed(t)
	f.compiler.fail["locale.ts"] = errors.New("unexpected token")

	artifacts, err := f.orch.BuildAll(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected token")
	assert.Empty(t, artifacts)

	specs := f.compiler.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, domain.CategoryConstants, specs[0].Category)
	assert.NoFileExists(t, f.out("main/index.html"))
}

func TestBuildAll_RecordsBuildInfo(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	src := f.write(t, "constants/locale.ts", "export {}\n")

	_, err := f.orch.BuildAll(context.Background())
	require.NoError(t, err)

	info, err := f.store.Get(f.out("constants/locale.js"))
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, src, info.Source)
	assert.Equal(t, string(domain.CategoryConstants), info.Kind)
	assert.Len(t, info.OutputHash, 16)
	assert.False(t, info.Timestamp.IsZero())
}

func TestBuildAll_EmitsPlan(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	root := t.TempDir()
	paths := domain.NewPathTable(filepath.Join(root, "src"), filepath.Join(root, "dist"), domain.Pages{
		Scripts: []string{"main"},
	})

	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	tracer.EXPECT().EmitPlan(gomock.Any(), []string{
		"constants",
		"dependency-shim",
		"page-script:main",
		"shared-package",
		"ui-form",
		"html",
		"styles",
		"assets",
	})
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), span).Times(8)
	span.EXPECT().SetAttribute("kiln.artifacts", 0).Times(8)
	span.EXPECT().End().Times(8)

	orch := orchestrator.New(paths, &fakeCompiler{}, kilnfs.NewCopier(), nil, nil, tracer, logger, kilnfs.NewWalker(), nil)

	_, err := orch.BuildAll(context.Background())
	require.NoError(t, err)
}

func TestBuildAll_ReportsOutputsToSpan(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	root := t.TempDir()
	paths := domain.NewPathTable(filepath.Join(root, "src"), filepath.Join(root, "dist"), domain.Pages{})
	require.NoError(t, os.MkdirAll(paths.Constants(), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(paths.Constants(), "locale.ts"), []byte("export {}\n"), 0o600))

	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()

	var written []string
	tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any())
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), span).AnyTimes()
	span.EXPECT().SetAttribute("kiln.artifacts", gomock.Any()).AnyTimes()
	span.EXPECT().End().AnyTimes()
	span.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		written = append(written, string(p))
		return len(p), nil
	})

	orch := orchestrator.New(paths, &fakeCompiler{}, kilnfs.NewCopier(), nil, nil, tracer, logger, kilnfs.NewWalker(), nil)

	_, err := orch.BuildAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"constants/locale.js\n"}, written)
}

func TestRebuild_SingleFileScoping(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.write(t, "assets/scripts/packages/modal.ts", "export {}\n")
	f.write(t, "assets/scripts/packages/tabs.ts", "export {}\n")

	target := router.Target{Kind: router.TargetCompile, Category: domain.CategorySharedPackage}
	require.NoError(t, f.orch.Rebuild(context.Background(), target, "modal.ts"))

	specs := f.compiler.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, domain.CategorySharedPackage, specs[0].Category)
	assert.True(t, specs[0].Options.Minify)
	assert.Equal(t, "modal.js", specs[0].OutputFileName)

	entries, err := os.ReadDir(f.paths.OutPackages())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "modal.js", entries[0].Name())
}

func TestRebuild_UnchangedFileIsSkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	src := f.write(t, "assets/styles/site.css", "body {}\n")
	ctx := context.Background()
	target := router.Target{Kind: router.TargetStyles}

	require.NoError(t, f.orch.Rebuild(ctx, target, "site.css"))
	require.FileExists(t, f.out("assets/styles/site.css"))
	require.NoError(t, os.Remove(f.out("assets/styles/site.css")))

	require.NoError(t, f.orch.Rebuild(ctx, target, "site.css"))
	assert.NoFileExists(t, f.out("assets/styles/site.css"))

	later := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(src, later, later))

	require.NoError(t, f.orch.Rebuild(ctx, target, "site.css"))
	assert.FileExists(t, f.out("assets/styles/site.css"))
}

func TestRebuild_Assets(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.write(t, "assets/fonts/a.woff2", "a")
	f.write(t, "assets/fonts/b.woff2", "b")
	f.write(t, "assets/images/logo.svg", "<svg/>")

	target := router.Target{Kind: router.TargetAssets}
	require.NoError(t, f.orch.Rebuild(context.Background(), target, "fonts"))

	assert.FileExists(t, f.out("assets/fonts/a.woff2"))
	assert.FileExists(t, f.out("assets/fonts/b.woff2"))
	assert.NoFileExists(t, f.out("assets/images/logo.svg"))
}

func TestRebuild_Ignore(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	require.NoError(t, f.orch.Rebuild(context.Background(), router.Target{Kind: router.TargetIgnore}, "x.ts"))
	assert.Empty(t, f.compiler.Specs())
}

func TestRebuild_PropagatesFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.write(t, "assets/scripts/register.ts", "export {\n")
	f.compiler.fail["register.ts"] = errors.New("expected '}'")

	target := router.Target{Kind: router.TargetCompile, Category: domain.CategoryPageScript}
	err := f.orch.Rebuild(context.Background(), target, "register.ts")
	assert.ErrorContains(t, err, "expected '}'")
}

func TestRebuild_DetachedSpan(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	root := t.TempDir()
	paths := domain.NewPathTable(filepath.Join(root, "src"), filepath.Join(root, "dist"), domain.Pages{})

	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	tracer.EXPECT().Start(gomock.Any(), "html index.html", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, opts ...ports.SpanOption) (context.Context, ports.Span) {
			var cfg ports.SpanConfig
			for _, opt := range opts {
				opt(&cfg)
			}
			assert.True(t, cfg.Detached)
			return ctx, span
		})
	span.EXPECT().SetAttribute("kiln.artifacts", 0)
	span.EXPECT().End()

	orch := orchestrator.New(paths, &fakeCompiler{}, kilnfs.NewCopier(), nil, nil, tracer, logger, kilnfs.NewWalker(), nil)
	require.NoError(t, orch.Rebuild(context.Background(), router.Target{Kind: router.TargetHTML}, "index.html"))
}
