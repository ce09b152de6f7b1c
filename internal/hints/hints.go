// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"

	"github.com/alnah/go-cbzconv/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForScratchLocked returns hints for a scratch area held by another job.
func ForScratchLocked() string {
	return format("another conversion is running; wait for it or pass a different --scratch-dir")
}

// ForMemory returns hints for jobs that ran out of memory.
// Containers additionally get the config knob for the Go memory limit.
func ForMemory() string {
	hints := []string{"lower --batch-size to hold fewer pages in memory"}
	if IsInContainer() {
		hints = append(hints, "set limits.memoryLimitMiB below the container limit")
	}
	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/cbzconv/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/cbzconv") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory errors.
func ForOutputDirectory() string {
	return format("check the directory exists and is writable, or pass --output")
}

// ForNothingProduced returns hints for jobs that wrote no files.
func ForNothingProduced() string {
	return formatHints([]string{
		"inputs must be CBZ or CBR archives containing images",
		"rerun with --log-level debug to see skipped pages",
	})
}

// ForMixedGroups returns hints for --merge across different series.
func ForMixedGroups() string {
	return format("merge only chapters of one series, or drop --merge")
}

// ForLibraryNotFound returns hints for a Mihon directory without downloads.
func ForLibraryNotFound() string {
	return format("point at the Mihon folder that contains downloads/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
