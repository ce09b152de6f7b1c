package main

// Notes:
// - exitCodeFor: we test the sentinel errors of the cbzconv and config
//   packages, plus wrapped errors to verify the errors.Is() chain.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/alnah/go-cbzconv"
	"github.com/alnah/go-cbzconv/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Busy (exit 5)
		{"busy", cbzconv.ErrBusy, ExitBusy},
		{"wrapped busy", fmt.Errorf("locking: %w", cbzconv.ErrBusy), ExitBusy},

		// Nothing produced (exit 4)
		{"nothing produced", cbzconv.ErrNothingProduced, ExitNoOutput},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"source io", cbzconv.ErrSourceIO, ExitIO},
		{"output unavailable", cbzconv.ErrOutputUnavailable, ExitIO},
		{"no sources", cbzconv.ErrNoSources, ExitIO},
		{"library not found", cbzconv.ErrLibraryNotFound, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid config value", config.ErrInvalidValue, ExitUsage},
		{"mixed groups", cbzconv.ErrMixedGroups, ExitUsage},
		{"invalid format", cbzconv.ErrInvalidFormat, ExitUsage},
		{"invalid sort", cbzconv.ErrInvalidSortMode, ExitUsage},
		{"invalid custom name", cbzconv.ErrInvalidCustomName, ExitUsage},
		{"invalid asset path", cbzconv.ErrInvalidAssetPath, ExitUsage},
		{"usage", ErrUsage, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"unknown series", ErrUnknownSeries, ExitUsage},
		{"unsupported shell", ErrUnsupportedShell, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"decode failure alone", cbzconv.ErrDecodeFailure, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix convention compliance
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Errorf("standard codes = %d/%d/%d, want 0/1/2", ExitSuccess, ExitGeneral, ExitUsage)
	}
	for name, code := range map[string]int{"ExitIO": ExitIO, "ExitNoOutput": ExitNoOutput, "ExitBusy": ExitBusy} {
		if code >= 126 {
			t.Errorf("%s = %d, should be < 126", name, code)
		}
	}
}
