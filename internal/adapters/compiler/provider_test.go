package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/compiler"
	"go.trai.ch/kiln/internal/adapters/esbuild"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestProvider_Compiler(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := compiler.NewProvider(mocks.NewMockLogger(ctrl))

	t.Run("default backend", func(t *testing.T) {
		got, err := provider.Compiler(domain.CompilerSettings{})
		require.NoError(t, err)
		assert.IsType(t, &esbuild.Compiler{}, got)
	})

	t.Run("esbuild backend", func(t *testing.T) {
		got, err := provider.Compiler(domain.CompilerSettings{Backend: domain.CompilerEsbuild})
		require.NoError(t, err)
		assert.IsType(t, &esbuild.Compiler{}, got)
	})

	t.Run("command backend", func(t *testing.T) {
		got, err := provider.Compiler(domain.CompilerSettings{
			Backend: domain.CompilerCommand,
			Command: []string{"bunx", "esbuild"},
		})
		require.NoError(t, err)
		assert.IsType(t, &shell.Compiler{}, got)
	})

	t.Run("command backend without command", func(t *testing.T) {
		_, err := provider.Compiler(domain.CompilerSettings{Backend: domain.CompilerCommand})
		require.ErrorIs(t, err, domain.ErrMissingCompilerCommand)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := provider.Compiler(domain.CompilerSettings{Backend: "swc"})
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrUnknownCompiler.Error())
	})
}
