package shell_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const fakeEsbuild = `#!/bin/sh
for arg in "$@"; do
  case "$arg" in
    --outdir=*) out="${arg#--outdir=}" ;;
    --entry-names=*) name="${arg#--entry-names=}" ;;
  esac
done
echo "compiled $name"
echo "$@" > "$out/$name.js"
`

func writeTool(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-esbuild")
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(path, []byte(content), 0o700))
	return path
}

func TestCompiler_Compile(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug("compiled locale").Times(1)

	tool := writeTool(t, fakeEsbuild)
	compiler, err := shell.NewCompiler([]string{tool}, logger)
	require.NoError(t, err)

	outDir := t.TempDir()
	spec := domain.NewBuildTargetSpec(domain.CategorySharedPackage, "/src/assets/scripts/packages/locale.ts", outDir)

	require.NoError(t, compiler.Compile(context.Background(), spec))

	data, err := os.ReadFile(filepath.Join(outDir, "locale.js"))
	require.NoError(t, err)
	args := string(data)
	assert.Contains(t, args, "/src/assets/scripts/packages/locale.ts")
	assert.Contains(t, args, "--bundle")
	assert.Contains(t, args, "--format=esm")
	assert.Contains(t, args, "--external:*")
	assert.Contains(t, args, "--splitting")
	assert.Contains(t, args, "--minify")
}

func TestCompiler_Compile_DependencyShimBundlesImports(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	compiler, err := shell.NewCompiler([]string{writeTool(t, fakeEsbuild)}, logger)
	require.NoError(t, err)

	outDir := t.TempDir()
	spec := domain.NewBuildTargetSpec(domain.CategoryDependencyShim, "/src/assets/scripts/deps/chart.ts", outDir)

	require.NoError(t, compiler.Compile(context.Background(), spec))

	data, err := os.ReadFile(filepath.Join(outDir, "chart.js"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "--external")
	assert.NotContains(t, string(data), "--splitting")
	assert.Contains(t, string(data), "--minify")
}

func TestCompiler_Compile_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug("error: unexpected token").Times(1)

	tool := writeTool(t, "#!/bin/sh\necho 'error: unexpected token' >&2\nexit 3\n")
	compiler, err := shell.NewCompiler([]string{tool}, logger)
	require.NoError(t, err)

	spec := domain.NewBuildTargetSpec(domain.CategoryConstants, "/src/constants/broken.ts", t.TempDir())
	err = compiler.Compile(context.Background(), spec)

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCompileFailed.Error())
}

func TestCompiler_Compile_MissingExecutable(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	compiler, err := shell.NewCompiler([]string{"nonexistent-command-xyz123"}, logger)
	require.NoError(t, err)

	spec := domain.NewBuildTargetSpec(domain.CategoryConstants, "/src/constants/a.ts", t.TempDir())
	err = compiler.Compile(context.Background(), spec)

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCompileFailed.Error())
}

func TestNewCompiler_EmptyCommand(t *testing.T) {
	_, err := shell.NewCompiler(nil, nil)
	require.ErrorIs(t, err, domain.ErrMissingCompilerCommand)
}
