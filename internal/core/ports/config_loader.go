package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the project rooted at or above cwd.
	// A non-empty configPath is used instead of discovery and must exist.
	Load(cwd, configPath string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to the directory containing kiln.yaml.
	// It returns cwd itself when no manifest is found.
	DiscoverRoot(cwd string) (string, error)
}
