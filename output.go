package cbzconv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alnah/go-cbzconv/internal/fileutil"
)

// OutputDir is the destination of a job.
type OutputDir interface {
	// List returns the names already present. It is called once, before
	// anything is written, and a failure aborts the job.
	List() ([]string, error)

	// Create opens name for writing, truncating any existing file.
	Create(name string) (io.WriteCloser, error)

	// Remove deletes name. Used to drop partially written files.
	Remove(name string) error
}

// DirOutput writes artifacts into a filesystem directory.
type DirOutput struct {
	dir string
}

// NewDirOutput returns a DirOutput for dir, creating it if needed.
func NewDirOutput(dir string) (*DirOutput, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
	}
	return &DirOutput{dir: abs}, nil
}

// Dir returns the absolute directory.
func (d *DirOutput) Dir() string { return d.dir }

// Path returns the full path of name.
func (d *DirOutput) Path(name string) string {
	return filepath.Join(d.dir, filepath.Base(name))
}

// List returns the directory's entry names.
// It fails if the directory is not writable.
func (d *DirOutput) List() ([]string, error) {
	if err := fileutil.ProbeWritable(d.dir); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// Create creates name in the directory.
func (d *DirOutput) Create(name string) (io.WriteCloser, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("output name %q must not contain a path", name)
	}
	return os.OpenFile(d.Path(name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644) // #nosec G302 G304 -- user output file
}

// Remove deletes name. A missing file is not an error.
func (d *DirOutput) Remove(name string) error {
	if err := os.Remove(d.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

var _ OutputDir = (*DirOutput)(nil)
