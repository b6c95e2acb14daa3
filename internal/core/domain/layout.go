package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

const (
	// KilnDirName is the name of the internal state directory.
	KilnDirName = ".kiln"

	// StoreDirName is the name of the build info store directory.
	StoreDirName = "store"

	// KilnFileName is the name of the project configuration file.
	KilnFileName = "kiln.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Directory names below the source and output roots.
const (
	ConstantsDirName = "constants"
	AssetsDirName    = "assets"
	ScriptsDirName   = "scripts"
	PackagesDirName  = "packages"
	UIFormsDirName   = "ui"
	DepsDirName      = "deps"
	StylesDirName    = "styles"
)

// DefaultStatePath returns the state directory below root.
func DefaultStatePath(root string) string {
	return filepath.Join(root, KilnDirName)
}

// DefaultStorePath returns the build info store directory below root.
// It joins .kiln and store.
func DefaultStorePath(root string) string {
	return filepath.Join(root, KilnDirName, StoreDirName)
}

// Pages declares the page scripts and the HTML page directories of a project.
type Pages struct {
	// Scripts are the top-level page scripts under assets/scripts, in build order.
	Scripts []string
	// Directories are the HTML page directories, one output directory each.
	Directories []string
	// Root is the parent of the page directories, relative to the source root.
	Root string
}

// PathTable is the source and output layout of a project.
// Every directory is derived from the two roots.
type PathTable struct {
	source string
	output string
	pages  Pages
}

// NewPathTable creates a PathTable for the given roots.
func NewPathTable(source, output string, pages Pages) PathTable {
	return PathTable{
		source: filepath.Clean(source),
		output: filepath.Clean(output),
		pages: Pages{
			Scripts:     slices.Clone(pages.Scripts),
			Directories: slices.Clone(pages.Directories),
			Root:        filepath.Clean(filepath.FromSlash(pages.Root)),
		},
	}
}

// Source returns the source root.
func (p PathTable) Source() string { return p.source }

// Output returns the output root.
func (p PathTable) Output() string { return p.output }

// PageScripts returns the declared page scripts in build order.
func (p PathTable) PageScripts() []string { return slices.Clone(p.pages.Scripts) }

// PageDirectories returns the declared HTML page directories.
func (p PathTable) PageDirectories() []string { return slices.Clone(p.pages.Directories) }

// IsPageScript reports whether name is a declared page script.
func (p PathTable) IsPageScript(name string) bool {
	return slices.Contains(p.pages.Scripts, name)
}

func (p PathTable) Constants() string { return filepath.Join(p.source, ConstantsDirName) }
func (p PathTable) Assets() string    { return filepath.Join(p.source, AssetsDirName) }
func (p PathTable) Scripts() string   { return filepath.Join(p.Assets(), ScriptsDirName) }
func (p PathTable) Packages() string  { return filepath.Join(p.Scripts(), PackagesDirName) }
func (p PathTable) UIForms() string   { return filepath.Join(p.Scripts(), UIFormsDirName) }
func (p PathTable) Deps() string      { return filepath.Join(p.Scripts(), DepsDirName) }
func (p PathTable) Styles() string    { return filepath.Join(p.Assets(), StylesDirName) }

// PageSource returns the HTML source directory of a page.
func (p PathTable) PageSource(page string) string {
	return filepath.Join(p.source, p.pages.Root, page)
}

func (p PathTable) OutConstants() string { return filepath.Join(p.output, ConstantsDirName) }
func (p PathTable) OutAssets() string    { return filepath.Join(p.output, AssetsDirName) }
func (p PathTable) OutScripts() string   { return filepath.Join(p.OutAssets(), ScriptsDirName) }
func (p PathTable) OutPackages() string  { return filepath.Join(p.OutScripts(), PackagesDirName) }
func (p PathTable) OutUIForms() string   { return filepath.Join(p.OutScripts(), UIFormsDirName) }
func (p PathTable) OutDeps() string      { return filepath.Join(p.OutScripts(), DepsDirName) }
func (p PathTable) OutStyles() string    { return filepath.Join(p.OutAssets(), StylesDirName) }

// OutPage returns the output directory of a page.
func (p PathTable) OutPage(page string) string {
	return filepath.Join(p.output, page)
}

// SourceDir returns the source directory of a category.
// Page scripts live directly in the scripts directory.
func (p PathTable) SourceDir(c Category) (string, bool) {
	switch c {
	case CategoryConstants:
		return p.Constants(), true
	case CategoryPageScript:
		return p.Scripts(), true
	case CategorySharedPackage:
		return p.Packages(), true
	case CategoryUIForm:
		return p.UIForms(), true
	case CategoryDependencyShim:
		return p.Deps(), true
	default:
		return "", false
	}
}

// OutputDir returns the output directory of a category.
func (p PathTable) OutputDir(c Category) (string, bool) {
	switch c {
	case CategoryConstants:
		return p.OutConstants(), true
	case CategoryPageScript:
		return p.OutScripts(), true
	case CategorySharedPackage:
		return p.OutPackages(), true
	case CategoryUIForm:
		return p.OutUIForms(), true
	case CategoryDependencyShim:
		return p.OutDeps(), true
	default:
		return "", false
	}
}

// Rel returns path relative to the source root using forward slashes.
// It reports false when path is outside the source root.
func (p PathTable) Rel(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.source, path)
	}
	rel, err := filepath.Rel(p.source, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// RelDir returns a derived source directory relative to the source root with forward slashes.
func (p PathTable) RelDir(dir string) string {
	rel, ok := p.Rel(dir)
	if !ok || rel == "." {
		return ""
	}
	return rel
}
