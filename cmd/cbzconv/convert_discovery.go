package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-cbzconv"
	"github.com/alnah/go-cbzconv/internal/fileutil"
)

// Sentinel errors for input discovery.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrInvalidExtension = errors.New("file must have a .cbz, .cbr, .zip or .rar extension")
	ErrUnknownSeries    = errors.New("series not found in library")
)

// inputExts are accepted for explicit file arguments.
var inputExts = []string{".cbz", ".cbr", ".zip", ".rar"}

// dirExts are picked up when a directory is given.
var dirExts = []string{".cbz", ".cbr"}

// expandInputs resolves file and directory arguments to archive paths.
// Directories contribute their *.cbz and *.cbr files in name order; they
// are not walked recursively. Duplicates are dropped.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if !seen[abs] {
			seen[abs] = true
			paths = append(paths, abs)
		}
	}

	for _, arg := range args {
		p, err := fileutil.ExpandHome(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		if !info.IsDir() {
			if !fileutil.HasExtension(p, inputExts...) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidExtension, arg)
			}
			add(p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && fileutil.HasExtension(e.Name(), dirExts...) {
				add(filepath.Join(p, e.Name()))
			}
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no .cbz or .cbr files found", ErrNoInput)
	}
	return paths, nil
}

// resolveSources returns the sources named by the arguments, or by
// --series when set.
func resolveSources(args []string, series, libraryDir string) ([]cbzconv.Source, error) {
	if series == "" {
		if len(args) == 0 {
			return nil, ErrNoInput
		}
		paths, err := expandInputs(args)
		if err != nil {
			return nil, err
		}
		return cbzconv.FileSources(paths...)
	}

	if len(args) > 0 {
		return nil, fmt.Errorf("%w: --series cannot be combined with input paths", ErrUsage)
	}
	if libraryDir == "" {
		return nil, fmt.Errorf("%w: --series needs --library or library.dir", ErrUsage)
	}
	dir, err := fileutil.ExpandHome(libraryDir)
	if err != nil {
		return nil, err
	}
	all, err := cbzconv.ScanLibrary(dir)
	if err != nil {
		return nil, err
	}
	s, ok := cbzconv.FindSeries(all, series)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeries, series)
	}
	return s.Chapters, nil
}
