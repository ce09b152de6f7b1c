package archive

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Sentinel errors for archive operations.
var (
	// ErrEmptyArchive indicates the archive holds no entries at all.
	ErrEmptyArchive = errors.New("archive has no entries")

	// ErrOpen indicates the file is not a readable zip container.
	ErrOpen = errors.New("cannot open archive")
)

// Order selects how Pages orders the entries of an archive.
type Order int

const (
	// OrderByName sorts entries by name, keeping ties in native order.
	OrderByName Order = iota

	// OrderNative keeps the zip reader's enumeration order.
	OrderNative
)

// Entry is a read-only view of one archive member.
// It is valid only while its Archive is open.
type Entry struct {
	Name  string
	IsDir bool
	Index int // position in native enumeration order

	file *zip.File
}

// Open returns a reader for the entry's uncompressed bytes.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.file == nil {
		return nil, fmt.Errorf("entry %q: not backed by an archive", e.Name)
	}
	return e.file.Open()
}

// Size returns the uncompressed size recorded in the central directory.
func (e Entry) Size() int64 {
	if e.file == nil {
		return 0
	}
	return int64(e.file.UncompressedSize64) // #nosec G115 -- zip64 sizes fit int64
}

// Archive is an open zip container.
type Archive struct {
	rc      *zip.ReadCloser
	entries []Entry
}

// Open opens the zip file at path.
// Returns ErrEmptyArchive if the archive has zero entries.
func Open(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if len(rc.File) == 0 {
		_ = rc.Close()
		return nil, ErrEmptyArchive
	}

	entries := make([]Entry, len(rc.File))
	for i, f := range rc.File {
		entries[i] = Entry{
			Name:  f.Name,
			IsDir: f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/"),
			Index: i,
			file:  f,
		}
	}
	return &Archive{rc: rc, entries: entries}, nil
}

// Entries returns every entry, directories included, in native order.
func (a *Archive) Entries() []Entry {
	return slices.Clone(a.entries)
}

// Pages returns the non-directory entries in the requested order.
func (a *Archive) Pages(order Order) []Entry {
	pages := make([]Entry, 0, len(a.entries))
	for _, e := range a.entries {
		if !e.IsDir {
			pages = append(pages, e)
		}
	}
	if order == OrderByName {
		slices.SortStableFunc(pages, func(x, y Entry) int {
			return strings.Compare(x.Name, y.Name)
		})
	}
	return pages
}

// Close releases the underlying file. Entries become invalid.
func (a *Archive) Close() error {
	return a.rc.Close()
}
