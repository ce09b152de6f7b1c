package cbzconv

import (
	"fmt"
	"io"
	"strings"
)

// Format selects the output container.
type Format string

// Output formats.
const (
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
)

// Ext returns the file extension of f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat returns the Format named by s, case-insensitively.
// Empty means PDF.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatPDF):
		return FormatPDF, nil
	case string(FormatEPUB):
		return FormatEPUB, nil
	default:
		return "", fmt.Errorf("%w: %q (must be pdf or epub)", ErrInvalidFormat, s)
	}
}

// SortMode selects the page order within an archive.
type SortMode string

// Sort modes.
const (
	// SortByName orders entries by name. Ties keep archive order.
	SortByName SortMode = "name"

	// SortArchive keeps the order in which the zip reader enumerates
	// entries. This is reader-defined and not a byte-offset sort.
	SortArchive SortMode = "archive"
)

// ParseSortMode returns the SortMode named by s. Empty means SortByName.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SortByName):
		return SortByName, nil
	case string(SortArchive):
		return SortArchive, nil
	default:
		return "", fmt.Errorf("%w: %q (must be name or archive)", ErrInvalidSortMode, s)
	}
}

// Defaults applied to non-positive job sizes.
const (
	DefaultMaxPages  = 10000
	DefaultBatchSize = 200
)

// Source is one input archive.
type Source struct {
	// ID identifies the source within a job. Defaults to Name, then to the
	// source position.
	ID string

	// Name is the display name hint, usually the archive file name.
	Name string

	// Group is the series or folder title, when the caller knows it.
	Group string

	// Parent identifies the containing folder. Used for merge eligibility
	// and naming when Group is empty.
	Parent string

	// Open returns a fresh stream over the archive bytes.
	Open func() (io.ReadCloser, error)
}

// Job describes one conversion request. It is not modified by Convert.
type Job struct {
	Sources []Source

	MaxPages  int // pages per output file, <= 0 means DefaultMaxPages
	BatchSize int // pages rendered per intermediate PDF, <= 0 means DefaultBatchSize

	Merge        bool // combine all sources into one page stream
	Sort         SortMode
	Compress     bool // recompress images to JPEG quality 75 and write compact PDF streams
	ChapterNames bool // derive name suffixes from chapter numbers
	CustomName   string
	Format       Format

	Output OutputDir
}

// withDefaults returns a copy of j with defaults filled in.
func (j Job) withDefaults() Job {
	if j.MaxPages <= 0 {
		j.MaxPages = DefaultMaxPages
	}
	if j.BatchSize <= 0 {
		j.BatchSize = DefaultBatchSize
	}
	if sort, err := ParseSortMode(string(j.Sort)); err == nil {
		j.Sort = sort
	}
	if format, err := ParseFormat(string(j.Format)); err == nil {
		j.Format = format
	}
	j.CustomName = strings.TrimSpace(j.CustomName)

	sources := make([]Source, len(j.Sources))
	copy(sources, j.Sources)
	for i := range sources {
		if sources[i].ID == "" {
			sources[i].ID = sources[i].Name
		}
		if sources[i].ID == "" {
			sources[i].ID = fmt.Sprintf("source-%d", i+1)
		}
	}
	j.Sources = sources
	return j
}

// Validate checks the job before any work starts.
// Sizes are not checked: non-positive values mean "use the default".
func (j Job) Validate() error {
	if len(j.Sources) == 0 {
		return ErrNoSources
	}
	for i, s := range j.Sources {
		if s.Open == nil {
			return fmt.Errorf("%w: source %d (%s) has no Open function", ErrSourceIO, i+1, s.Name)
		}
	}
	if j.Output == nil {
		return fmt.Errorf("%w: no output directory", ErrOutputUnavailable)
	}
	if _, err := ParseFormat(string(j.Format)); err != nil {
		return err
	}
	if _, err := ParseSortMode(string(j.Sort)); err != nil {
		return err
	}
	if strings.ContainsAny(j.CustomName, "/\\\x00") {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidCustomName, j.CustomName)
	}
	if j.Merge && !CanMerge(j.Sources) {
		return ErrMixedGroups
	}
	return nil
}

// Result summarizes a finished job.
type Result struct {
	// Artifacts lists the written files in source, then part, order.
	Artifacts []Artifact

	// Status is the ordered status log shown to the user.
	Status []string

	// Errors holds the non-fatal per-source and per-part failures.
	Errors []error

	SourcesAttempted int
	PartsAttempted   int
	SkippedPages     int
}

// Pages returns the total page count across all artifacts.
func (r *Result) Pages() int {
	n := 0
	for _, a := range r.Artifacts {
		n += a.Pages
	}
	return n
}

// Artifact is one finished output file.
type Artifact struct {
	Name    string // file name inside the output directory
	Source  string // display name of the source, or the merged group
	Part    int    // 1-based part index within the source
	Parts   int    // number of parts the source was split into
	Pages   int
	Skipped int // pages left out because they could not be decoded
	Bytes   int64
}

// ProgressFunc receives progress messages synchronously, in pipeline order.
type ProgressFunc func(message string)
