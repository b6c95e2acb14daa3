// Package router classifies source changes and dispatches rebuilds in watch mode.
package router

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
)

// TargetKind selects the operation a change triggers.
type TargetKind uint8

const (
	// TargetIgnore drops the change.
	TargetIgnore TargetKind = iota
	// TargetCompile compiles a category.
	TargetCompile
	// TargetHTML copies page documents.
	TargetHTML
	// TargetStyles copies style sheets.
	TargetStyles
	// TargetAssets copies static media.
	TargetAssets
)

func (k TargetKind) String() string {
	switch k {
	case TargetIgnore:
		return "ignore"
	case TargetCompile:
		return "compile"
	case TargetHTML:
		return "html"
	case TargetStyles:
		return "styles"
	case TargetAssets:
		return "assets"
	default:
		return "unknown"
	}
}

// Target is the rebuild a route dispatches to. Category is set for TargetCompile only.
type Target struct {
	Kind     TargetKind
	Category domain.Category
}

// Route pairs a predicate over source-relative paths with a target.
type Route struct {
	Name   string
	Match  func(rel string) bool
	Target Target
	// Arg derives the file argument of the target from the relative path.
	Arg func(rel string) string
}

// Routes is an ordered route table. The first matching route wins.
type Routes []Route

// Classify returns the first route matching rel, a forward-slash path relative to the source root.
func (r Routes) Classify(rel string) (Route, bool) {
	for _, route := range r {
		if route.Match(rel) {
			return route, true
		}
	}
	return Route{}, false
}

// DefaultRoutes builds the route table of a project layout.
func DefaultRoutes(paths domain.PathTable) Routes {
	deps := paths.RelDir(paths.Deps())
	constants := paths.RelDir(paths.Constants())
	ui := paths.RelDir(paths.UIForms())
	packages := paths.RelDir(paths.Packages())
	scripts := paths.RelDir(paths.Scripts())
	assets := paths.RelDir(paths.Assets())

	return Routes{
		{
			Name:   "dependency shim",
			Match:  glob(deps + "/**"),
			Target: compile(domain.CategoryDependencyShim),
			Arg:    path.Base,
		},
		{
			Name:   "constants",
			Match:  glob(constants + "/**"),
			Target: compile(domain.CategoryConstants),
			Arg:    path.Base,
		},
		{
			Name:   "ui form",
			Match:  glob(ui + "/**/*" + domain.ScriptExt),
			Target: compile(domain.CategoryUIForm),
			Arg:    path.Base,
		},
		{
			Name:   "shared package",
			Match:  glob(packages + "/**/*" + domain.ScriptExt),
			Target: compile(domain.CategorySharedPackage),
			Arg:    path.Base,
		},
		{
			Name: "page script",
			Match: func(rel string) bool {
				ok, _ := doublestar.Match(scripts+"/*"+domain.ScriptExt, rel)
				return ok && paths.IsPageScript(domain.BaseName(rel))
			},
			Target: compile(domain.CategoryPageScript),
			Arg:    path.Base,
		},
		{
			// Other scripts are only reached through imports.
			Name:   "script",
			Match:  glob("**/*" + domain.ScriptExt),
			Target: Target{Kind: TargetIgnore},
			Arg:    path.Base,
		},
		{
			Name:   "html",
			Match:  glob("**/*" + domain.HTMLExt),
			Target: Target{Kind: TargetHTML},
			Arg:    path.Base,
		},
		{
			Name:   "styles",
			Match:  glob("**/*" + domain.StyleExt),
			Target: Target{Kind: TargetStyles},
			Arg:    path.Base,
		},
		{
			Name:   "assets",
			Match:  glob(assets + "/**"),
			Target: Target{Kind: TargetAssets},
			Arg: func(rel string) string {
				if rel == assets {
					return ""
				}
				return strings.TrimPrefix(rel, assets+"/")
			},
		},
	}
}

// Dispatch is one rebuild selected for a change.
type Dispatch struct {
	Target Target
	File   string
}

// DirectoryDispatches returns the rebuilds a change to directory dir needs, in build order.
// Steps that read their source directory flat run in full when dir is that directory or
// contains it. The assets step also runs, scoped to dir, when dir lies inside the assets tree.
func DirectoryDispatches(paths domain.PathTable, dir string) []Dispatch {
	flat := []struct {
		dir    string
		target Target
	}{
		{paths.RelDir(paths.Constants()), compile(domain.CategoryConstants)},
		{paths.RelDir(paths.Deps()), compile(domain.CategoryDependencyShim)},
		{paths.RelDir(paths.Scripts()), compile(domain.CategoryPageScript)},
		{paths.RelDir(paths.Packages()), compile(domain.CategorySharedPackage)},
		{paths.RelDir(paths.UIForms()), compile(domain.CategoryUIForm)},
	}

	var dispatches []Dispatch
	for _, f := range flat {
		if contains(dir, f.dir) {
			dispatches = append(dispatches, Dispatch{Target: f.target})
		}
	}

	for _, page := range paths.PageDirectories() {
		if contains(dir, paths.RelDir(paths.PageSource(page))) {
			dispatches = append(dispatches, Dispatch{Target: Target{Kind: TargetHTML}})
			break
		}
	}

	if contains(dir, paths.RelDir(paths.Styles())) {
		dispatches = append(dispatches, Dispatch{Target: Target{Kind: TargetStyles}})
	}

	assets := paths.RelDir(paths.Assets())
	switch {
	case contains(dir, assets):
		dispatches = append(dispatches, Dispatch{Target: Target{Kind: TargetAssets}})
	case contains(assets, dir):
		dispatches = append(dispatches, Dispatch{
			Target: Target{Kind: TargetAssets},
			File:   strings.TrimPrefix(dir, assets+"/"),
		})
	}

	return dispatches
}

// contains reports whether rel equals parent or lies below it. The empty parent is the source root.
func contains(parent, rel string) bool {
	return parent == "" || rel == parent || strings.HasPrefix(rel, parent+"/")
}

func compile(c domain.Category) Target {
	return Target{Kind: TargetCompile, Category: c}
}

func glob(pattern string) func(string) bool {
	return func(rel string) bool {
		ok, _ := doublestar.Match(pattern, rel)
		return ok
	}
}
