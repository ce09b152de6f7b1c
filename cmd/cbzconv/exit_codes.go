package main

import (
	"errors"
	"os"

	"github.com/alnah/go-cbzconv"
	"github.com/alnah/go-cbzconv/internal/config"
)

// Exit codes for the cbzconv CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Every requested output was written
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or job
	ExitIO       = 3 // Unreadable input or unusable output directory
	ExitNoOutput = 4 // The job finished without writing any file
	ExitBusy     = 5 // Another conversion holds the scratch lock
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, cbzconv.ErrBusy) {
		return ExitBusy
	}

	if errors.Is(err, cbzconv.ErrNothingProduced) {
		return ExitNoOutput
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, cbzconv.ErrSourceIO) ||
		errors.Is(err, cbzconv.ErrOutputUnavailable) ||
		errors.Is(err, cbzconv.ErrNoSources) ||
		errors.Is(err, cbzconv.ErrLibraryNotFound) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, cbzconv.ErrMixedGroups) ||
		errors.Is(err, cbzconv.ErrInvalidFormat) ||
		errors.Is(err, cbzconv.ErrInvalidSortMode) ||
		errors.Is(err, cbzconv.ErrInvalidCustomName) ||
		errors.Is(err, cbzconv.ErrInvalidAssetPath) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrUnknownSeries) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
