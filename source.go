package cbzconv

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSource returns a Source reading the archive at path.
// The containing directory serves as its parent for naming and merging.
func FileSource(path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrSourceIO, err)
	}
	return Source{
		ID:     abs,
		Name:   filepath.Base(abs),
		Parent: filepath.Dir(abs),
		Open: func() (io.ReadCloser, error) {
			return os.Open(abs) // #nosec G304 -- user-selected input
		},
	}, nil
}

// FileSources returns one Source per path, in order.
func FileSources(paths ...string) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		s, err := FileSource(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}
