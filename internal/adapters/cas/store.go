// Package cas implements the build info store.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BuildInfoStore = (*Store)(nil)

// Store implements ports.BuildInfoStore with one JSON file per output path.
type Store struct {
	dir string
}

// NewStore creates a store backed by dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "dir", dir)
	}
	return &Store{dir: dir}, nil
}

// Open adapts NewStore to ports.StoreOpener.
func Open(dir string) (ports.BuildInfoStore, error) {
	return NewStore(dir)
}

// Get retrieves the build info for an output path.
func (s *Store) Get(output string) (*domain.BuildInfo, error) {
	filename := s.getFilename(output)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var info domain.BuildInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "output", output)
	}

	return &info, nil
}

// Put stores the build info, replacing any previous record for the same output.
func (s *Store) Put(info domain.BuildInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	if err := os.WriteFile(s.getFilename(info.Output), data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "output", info.Output)
	}

	return nil
}

func (s *Store) getFilename(output string) string {
	hash := sha256.Sum256([]byte(output))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}
