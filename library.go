package cbzconv

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-cbzconv/internal/fileutil"
)

// Series is one manga folder of a Mihon library.
type Series struct {
	Title     string
	Extension string // name of the source extension folder
	Path      string
	Chapters  []Source
}

// archiveExts are the file extensions picked up as chapters.
var archiveExts = []string{".cbz", ".cbr"}

// ScanLibrary lists the series of a Mihon data directory laid out as
// <root>/downloads/<extension>/<manga>/<chapter>.cbz. root may also be the
// downloads folder itself. Series without chapters are left out. Each
// chapter's Group is its manga folder title, so chapters of one series are
// always mergeable.
func ScanLibrary(root string) ([]Series, error) {
	downloads := filepath.Join(root, "downloads")
	if !fileutil.DirExists(downloads) {
		if !strings.EqualFold(filepath.Base(filepath.Clean(root)), "downloads") || !fileutil.DirExists(root) {
			return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, downloads)
		}
		downloads = root
	}

	extDirs, err := readDirs(downloads)
	if err != nil {
		return nil, err
	}

	var series []Series
	for _, ext := range extDirs {
		mangaDirs, err := readDirs(filepath.Join(downloads, ext))
		if err != nil {
			return nil, err
		}
		for _, manga := range mangaDirs {
			s, err := scanSeries(filepath.Join(downloads, ext, manga), ext, manga)
			if err != nil {
				return nil, err
			}
			if len(s.Chapters) > 0 {
				series = append(series, s)
			}
		}
	}

	slices.SortStableFunc(series, func(a, b Series) int {
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return strings.Compare(a.Extension, b.Extension)
	})
	return series, nil
}

func scanSeries(dir, ext, title string) (Series, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Series{}, fmt.Errorf("reading %s: %w", dir, err)
	}
	s := Series{Title: title, Extension: ext, Path: dir}
	for _, e := range entries {
		if e.IsDir() || !fileutil.HasExtension(e.Name(), archiveExts...) {
			continue
		}
		src, err := FileSource(filepath.Join(dir, e.Name()))
		if err != nil {
			return Series{}, err
		}
		src.Group = title
		s.Chapters = append(s.Chapters, src)
	}
	return s, nil
}

// readDirs returns the names of the visible subdirectories of dir, sorted.
func readDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// FindSeries returns the first series whose title equals title,
// ignoring case.
func FindSeries(series []Series, title string) (Series, bool) {
	for _, s := range series {
		if strings.EqualFold(s.Title, strings.TrimSpace(title)) {
			return s, true
		}
	}
	return Series{}, false
}
