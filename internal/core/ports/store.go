package ports

import "go.trai.ch/kiln/internal/core/domain"

// BuildInfoStore defines the interface for storing and retrieving build information.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildInfoStore interface {
	// Get retrieves the build info for an output path.
	// Returns nil, nil if not found.
	Get(output string) (*domain.BuildInfo, error)

	// Put stores the build info.
	Put(info domain.BuildInfo) error
}

// StoreOpener opens the build info store rooted at a directory.
type StoreOpener func(dir string) (BuildInfoStore, error)
