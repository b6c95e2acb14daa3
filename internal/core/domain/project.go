package domain

import "slices"

const (
	// DefaultSourceDir is the source root relative to the project root.
	DefaultSourceDir = "src"
	// DefaultOutputDir is the output root relative to the project root.
	DefaultOutputDir = "dist"
)

// CompilerBackend selects the compiler implementation.
type CompilerBackend string

const (
	// CompilerEsbuild compiles in-process.
	CompilerEsbuild CompilerBackend = "esbuild"
	// CompilerCommand runs an external esbuild-compatible command.
	CompilerCommand CompilerBackend = "command"
)

// CompilerSettings configures the compiler backend.
type CompilerSettings struct {
	Backend CompilerBackend
	Command []string
}

// Project is a loaded kiln project.
type Project struct {
	// Root is the absolute project root.
	Root string
	// ConfigPath is the manifest the project was loaded from, empty for defaults.
	ConfigPath string
	Paths      PathTable
	Compiler   CompilerSettings
	// Ignore holds glob patterns, relative to the source root, excluded from asset sync and watching.
	Ignore []string
}

// StatePath returns the project's state directory.
func (p *Project) StatePath() string {
	return DefaultStatePath(p.Root)
}

// StorePath returns the project's build info store directory.
func (p *Project) StorePath() string {
	return DefaultStorePath(p.Root)
}

// DefaultPageScripts returns the page scripts used when none are configured.
func DefaultPageScripts() []string {
	return []string{"layout", "main", "register"}
}

// DefaultPageDirectories returns the HTML page directories used when none are configured.
func DefaultPageDirectories() []string {
	return []string{"main", "register"}
}

// IgnorePatterns returns a copy of the ignore globs.
func (p *Project) IgnorePatterns() []string {
	return slices.Clone(p.Ignore)
}
