// Package compiler selects the compiler backend configured for a project.
package compiler

import (
	"go.trai.ch/kiln/internal/adapters/esbuild"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CompilerProvider = (*Provider)(nil)

// Provider implements ports.CompilerProvider.
type Provider struct {
	logger ports.Logger
}

// NewProvider creates a new Provider.
func NewProvider(logger ports.Logger) *Provider {
	return &Provider{logger: logger}
}

// Compiler returns the backend named by settings. An empty backend means esbuild.
func (p *Provider) Compiler(settings domain.CompilerSettings) (ports.Compiler, error) {
	switch settings.Backend {
	case "", domain.CompilerEsbuild:
		return esbuild.NewCompiler(p.logger), nil
	case domain.CompilerCommand:
		return shell.NewCompiler(settings.Command, p.logger)
	default:
		return nil, zerr.With(domain.ErrUnknownCompiler, "backend", string(settings.Backend))
	}
}
