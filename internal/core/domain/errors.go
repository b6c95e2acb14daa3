package domain

import "go.trai.ch/zerr"

var (
	// ErrCompileFailed is returned when the compiler rejects an entrypoint.
	ErrCompileFailed = zerr.New("compile failed")

	// ErrCopyFailed is returned when a source file cannot be copied into the output tree.
	ErrCopyFailed = zerr.New("copy failed")

	// ErrOutputDirCreateFailed is returned when an output directory cannot be created.
	ErrOutputDirCreateFailed = zerr.New("failed to create output directory")

	// ErrUnknownPage is returned when a page script is not part of the declared page list.
	ErrUnknownPage = zerr.New("unknown page script")

	// ErrUnknownCategory is returned when a build is requested for an unknown category.
	ErrUnknownCategory = zerr.New("unknown build category")

	// ErrUnknownCompiler is returned when the configured compiler backend is not supported.
	ErrUnknownCompiler = zerr.New("unknown compiler backend, expected 'esbuild' or 'command'")

	// ErrMissingCompilerCommand is returned when the command backend has no command configured.
	ErrMissingCompilerCommand = zerr.New("compiler command is required for the 'command' backend")

	// ErrBuildFailed is returned when a full build does not complete.
	ErrBuildFailed = zerr.New("build failed")

	// ErrStoreCreateFailed is returned when the build info store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build info store directory")

	// ErrStoreReadFailed is returned when the build info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build info")

	// ErrStoreUnmarshalFailed is returned when the build info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")

	// ErrStoreMarshalFailed is returned when the build info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build info")

	// ErrStoreWriteFailed is returned when the build info cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build info")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
	ErrConfigNotFound = zerr.New("could not find kiln.yaml")

	// ErrInvalidPageName is returned when a page name contains invalid characters.
	ErrInvalidPageName = zerr.New("page name can only contain alphanumeric characters, hyphens and underscores")

	// ErrDuplicatePageName is returned when a page is declared twice.
	ErrDuplicatePageName = zerr.New("duplicate page name")

	// ErrOverlappingRoots is returned when the source and output roots overlap.
	ErrOverlappingRoots = zerr.New("source and output directories must not contain each other")

	// ErrInvalidIgnorePattern is returned when an ignore glob cannot be parsed.
	ErrInvalidIgnorePattern = zerr.New("invalid ignore pattern")

	// ErrInvalidSettings is returned when CLI settings fail validation.
	ErrInvalidSettings = zerr.New("invalid settings")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrFailedToCleanState is returned when the state directory cannot be removed.
	ErrFailedToCleanState = zerr.New("failed to clean state directory")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrWalkFailed is returned when a directory tree cannot be walked.
	ErrWalkFailed = zerr.New("failed to walk directory")

	// ErrWatcherStartFailed is returned when the filesystem watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")
)
