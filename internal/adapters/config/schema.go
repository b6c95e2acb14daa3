package config

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Version  string       `yaml:"version"`
	Root     string       `yaml:"root"`
	Source   string       `yaml:"source"`
	Output   string       `yaml:"output"`
	Pages    *PagesDTO    `yaml:"pages"`
	Compiler *CompilerDTO `yaml:"compiler"`
	Ignore   []string     `yaml:"ignore"`
}

// PagesDTO declares page scripts and HTML page directories.
// A nil list selects the defaults, an empty list disables the category.
type PagesDTO struct {
	Scripts     []string `yaml:"scripts"`
	Directories []string `yaml:"directories"`
	Root        string   `yaml:"root"`
}

// CompilerDTO selects the compiler backend.
type CompilerDTO struct {
	Backend string   `yaml:"backend"`
	Command []string `yaml:"command"`
}
