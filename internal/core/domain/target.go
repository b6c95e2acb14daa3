package domain

import (
	"path/filepath"
	"strings"
)

const (
	// ScriptExt is the extension of compilable entrypoints.
	ScriptExt = ".ts"
	// OutputExt is the extension of compiled outputs.
	OutputExt = ".js"
	// HTMLExt is the extension of page documents.
	HTMLExt = ".html"
	// StyleExt is the extension of style sheets.
	StyleExt = ".css"
)

// BuildTargetSpec describes one compile invocation.
type BuildTargetSpec struct {
	Category       Category
	Entrypoint     string
	OutputDir      string
	OutputFileName string
	Options        CompileOptions
}

// NewBuildTargetSpec derives the spec of an entrypoint in the given category.
// The output file name is always the entrypoint's base name with the output extension.
func NewBuildTargetSpec(c Category, entrypoint, outputDir string) BuildTargetSpec {
	return BuildTargetSpec{
		Category:       c,
		Entrypoint:     entrypoint,
		OutputDir:      outputDir,
		OutputFileName: BaseName(entrypoint) + OutputExt,
		Options:        c.Options(),
	}
}

// Name returns the output file name without its extension.
func (s BuildTargetSpec) Name() string {
	return strings.TrimSuffix(s.OutputFileName, OutputExt)
}

// OutputPath returns the full path of the compiled entry file.
func (s BuildTargetSpec) OutputPath() string {
	return filepath.Join(s.OutputDir, s.OutputFileName)
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
