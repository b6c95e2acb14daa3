// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks

// Compiler turns one entrypoint into one output module.
type Compiler interface {
	// Compile writes spec.OutputFileName into spec.OutputDir.
	// With splitting enabled, shared chunks may be written next to it.
	// It returns an error wrapping domain.ErrCompileFailed when the source is rejected.
	Compile(ctx context.Context, spec domain.BuildTargetSpec) error
}

// CompilerProvider selects a Compiler for the project's compiler settings.
type CompilerProvider interface {
	Compiler(settings domain.CompilerSettings) (Compiler, error)
}
