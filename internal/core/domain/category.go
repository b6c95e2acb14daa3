package domain

// Category is a source classification that determines compile options and output location.
type Category string

const (
	// CategoryConstants are shared constant modules under the constants directory.
	CategoryConstants Category = "constants"
	// CategoryPageScript are the declared top-level page scripts.
	CategoryPageScript Category = "page-script"
	// CategorySharedPackage are shared modules under assets/scripts/packages.
	CategorySharedPackage Category = "shared-package"
	// CategoryUIForm are per-page form behaviours under assets/scripts/ui.
	CategoryUIForm Category = "ui-form"
	// CategoryDependencyShim wraps third-party libraries under assets/scripts/deps.
	CategoryDependencyShim Category = "dependency-shim"
)

// ExternalPolicy controls which imports the compiler leaves unresolved.
type ExternalPolicy string

const (
	// ExternalAll leaves every import external.
	ExternalAll ExternalPolicy = "all"
	// ExternalNone bundles every import.
	ExternalNone ExternalPolicy = "none"
)

// CompileOptions are the per-category compiler switches.
type CompileOptions struct {
	Minify    bool
	Splitting bool
	External  ExternalPolicy
}

// Categories returns every category.
func Categories() []Category {
	return []Category{
		CategoryConstants,
		CategoryDependencyShim,
		CategoryPageScript,
		CategorySharedPackage,
		CategoryUIForm,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryConstants, CategoryPageScript, CategorySharedPackage, CategoryUIForm, CategoryDependencyShim:
		return true
	default:
		return false
	}
}

// Options returns the fixed compile options of the category.
// Shared packages and dependency shims ship as-is to the browser and are minified.
// Dependency shims bundle all of their imports and never split.
func (c Category) Options() CompileOptions {
	switch c {
	case CategorySharedPackage:
		return CompileOptions{Minify: true, Splitting: true, External: ExternalAll}
	case CategoryDependencyShim:
		return CompileOptions{Minify: true, Splitting: false, External: ExternalNone}
	default:
		return CompileOptions{Minify: false, Splitting: true, External: ExternalAll}
	}
}

// Label returns the name used in console notifications.
func (c Category) Label() string {
	switch c {
	case CategoryConstants:
		return "constants"
	case CategoryPageScript:
		return "page script"
	case CategorySharedPackage:
		return "package"
	case CategoryUIForm:
		return "ui form"
	case CategoryDependencyShim:
		return "dependency"
	default:
		return string(c)
	}
}

func (c Category) String() string {
	return string(c)
}
