package ports

// ChangeDetector reports whether a file changed since it was last observed.
//
//go:generate mockgen -source=change_detector.go -destination=mocks/mock_change_detector.go -package=mocks
type ChangeDetector interface {
	// HasChanged returns true and records the current modification time when path exists
	// and was either never observed or modified since. Missing paths are unchanged.
	HasChanged(path string) bool

	// Clear forgets every observation.
	Clear()
}
