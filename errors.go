package cbzconv

import "errors"

// Sentinel errors for conversion jobs.
var (
	// ErrEmptyArchive indicates a source without a single image entry.
	// The source is reported and skipped.
	ErrEmptyArchive = errors.New("no images found")

	// ErrSourceIO indicates a source stream could not be opened or copied.
	// The source is reported and skipped.
	ErrSourceIO = errors.New("cannot read source")

	// ErrDecodeFailure indicates image data that could not be decoded.
	// Single pages are skipped; a part made only of such pages is dropped.
	ErrDecodeFailure = errors.New("cannot decode image")

	// ErrOutputUnavailable indicates the destination cannot be listed or
	// written. It aborts the job.
	ErrOutputUnavailable = errors.New("output unavailable")

	// ErrNothingProduced is returned alongside a Result that holds no
	// artifacts.
	ErrNothingProduced = errors.New("nothing produced")

	// ErrBusy indicates another job holds the scratch directory.
	ErrBusy = errors.New("another conversion is using the scratch directory")

	// Job validation errors.
	ErrNoSources         = errors.New("no sources to convert")
	ErrMixedGroups       = errors.New("sources belong to different series")
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrInvalidSortMode   = errors.New("invalid sort mode")
	ErrInvalidCustomName = errors.New("invalid custom name")

	// ErrLibraryNotFound indicates a library root without a downloads folder.
	ErrLibraryNotFound = errors.New("library downloads directory not found")

	// ErrInvalidAssetPath indicates an unusable custom asset directory.
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
