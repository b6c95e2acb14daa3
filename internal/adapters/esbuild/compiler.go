// Package esbuild compiles entrypoints in-process with the esbuild Go API.
package esbuild

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler implements ports.Compiler using api.Build.
type Compiler struct {
	logger ports.Logger
}

// NewCompiler creates a new in-process compiler.
func NewCompiler(logger ports.Logger) *Compiler {
	return &Compiler{logger: logger}
}

// Compile bundles the spec's entrypoint as a browser ES module.
// esbuild cannot be interrupted, so ctx is only checked before starting.
func (c *Compiler) Compile(ctx context.Context, spec domain.BuildTargetSpec) error {
	if err := ctx.Err(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCompileFailed.Error()), "entrypoint", spec.Entrypoint)
	}

	result := api.Build(Options(spec))

	for _, msg := range result.Warnings {
		c.logger.Warn(formatMessage(msg))
	}

	if len(result.Errors) > 0 {
		messages := make([]string, 0, len(result.Errors))
		for _, msg := range result.Errors {
			messages = append(messages, formatMessage(msg))
		}
		err := zerr.With(domain.ErrCompileFailed, "entrypoint", spec.Entrypoint)
		return zerr.With(err, "errors", strings.Join(messages, "\n"))
	}

	return nil
}

// Options translates a spec into esbuild build options.
func Options(spec domain.BuildTargetSpec) api.BuildOptions {
	opts := api.BuildOptions{
		EntryPoints: []string{spec.Entrypoint},
		Outdir:      spec.OutputDir,
		EntryNames:  spec.Name(),
		Bundle:      true,
		Splitting:   spec.Options.Splitting,
		Format:      api.FormatESModule,
		Platform:    api.PlatformBrowser,
		Write:       true,
		LogLevel:    api.LogLevelSilent,
	}

	if spec.Options.External == domain.ExternalAll {
		opts.External = []string{"*"}
	}

	if spec.Options.Minify {
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
	}

	return opts
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}
