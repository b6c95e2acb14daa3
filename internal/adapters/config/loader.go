// Package config provides the project configuration loader for kiln.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the manifest version this loader understands.
const SupportedVersion = "1"

var validPageNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Load reads the project for cwd. Without a manifest the defaults apply, rooted at cwd.
func (l *Loader) Load(cwd, configPath string) (*domain.Project, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(cwd, configPath)
		}
		if _, err := l.FS.Stat(configPath); err != nil {
			return nil, zerr.With(domain.ErrConfigNotFound, "path", configPath)
		}
	} else {
		configPath = l.findConfiguration(cwd)
	}

	if configPath == "" {
		return buildProject(cwd, "", &Kilnfile{})
	}

	var kilnfile Kilnfile
	if err := l.readAndUnmarshalYAML(configPath, &kilnfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if kilnfile.Version != "" && kilnfile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", domain.KilnFileName, kilnfile.Version, SupportedVersion))
	}

	return buildProject(resolveRoot(configPath, kilnfile.Root), configPath, &kilnfile)
}

// DiscoverRoot walks up from cwd to the directory holding kiln.yaml, or returns cwd.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}
	if configPath := l.findConfiguration(cwd); configPath != "" {
		return filepath.Dir(configPath), nil
	}
	return cwd, nil
}

func (l *Loader) findConfiguration(cwd string) string {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.KilnFileName)
		if info, err := l.FS.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

func buildProject(root, configPath string, kf *Kilnfile) (*domain.Project, error) {
	source := resolveDir(root, kf.Source, domain.DefaultSourceDir)
	output := resolveDir(root, kf.Output, domain.DefaultOutputDir)
	if err := validateRoots(source, output); err != nil {
		return nil, err
	}

	pages := domain.Pages{
		Scripts:     domain.DefaultPageScripts(),
		Directories: domain.DefaultPageDirectories(),
	}
	if kf.Pages != nil {
		if kf.Pages.Scripts != nil {
			pages.Scripts = kf.Pages.Scripts
		}
		if kf.Pages.Directories != nil {
			pages.Directories = kf.Pages.Directories
		}
		pages.Root = kf.Pages.Root
	}
	if err := validatePages(pages); err != nil {
		return nil, err
	}

	compiler, err := buildCompilerSettings(kf.Compiler)
	if err != nil {
		return nil, err
	}

	for _, pattern := range kf.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(domain.ErrInvalidIgnorePattern, "pattern", pattern)
		}
	}

	return &domain.Project{
		Root:       root,
		ConfigPath: configPath,
		Paths:      domain.NewPathTable(source, output, pages),
		Compiler:   compiler,
		Ignore:     kf.Ignore,
	}, nil
}

func buildCompilerSettings(dto *CompilerDTO) (domain.CompilerSettings, error) {
	settings := domain.CompilerSettings{Backend: domain.CompilerEsbuild}
	if dto == nil {
		return settings, nil
	}

	if dto.Backend != "" {
		settings.Backend = domain.CompilerBackend(dto.Backend)
	}
	settings.Command = dto.Command

	switch settings.Backend {
	case domain.CompilerEsbuild:
		return settings, nil
	case domain.CompilerCommand:
		if len(settings.Command) == 0 || strings.TrimSpace(settings.Command[0]) == "" {
			return settings, domain.ErrMissingCompilerCommand
		}
		return settings, nil
	default:
		return settings, zerr.With(domain.ErrUnknownCompiler, "backend", dto.Backend)
	}
}

func validatePages(pages domain.Pages) error {
	for _, list := range [][]string{pages.Scripts, pages.Directories} {
		seen := make(map[string]bool, len(list))
		for _, name := range list {
			if !validPageNameRegex.MatchString(name) {
				return zerr.With(domain.ErrInvalidPageName, "page", name)
			}
			if seen[name] {
				return zerr.With(domain.ErrDuplicatePageName, "page", name)
			}
			seen[name] = true
		}
	}

	if filepath.IsAbs(pages.Root) || strings.HasPrefix(filepath.Clean(filepath.FromSlash(pages.Root)), "..") {
		return zerr.With(domain.ErrInvalidPageName, "root", pages.Root)
	}
	return nil
}

func validateRoots(source, output string) error {
	if within(source, output) || within(output, source) {
		return zerr.With(zerr.With(domain.ErrOverlappingRoots, "source", source), "output", output)
	}
	return nil
}

// within reports whether path equals dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func resolveDir(root, configured, fallback string) string {
	if configured == "" {
		configured = fallback
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Join(root, configured)
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

func (l *Loader) readAndUnmarshalYAML(configPath string, target *Kilnfile) error {
	content, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(content, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}
	return nil
}
