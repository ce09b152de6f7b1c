// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrNotDirectory = errors.New("not a directory")
	ErrNotWritable  = errors.New("directory is not writable")
)

// ProbeWritable checks that dir accepts new files by creating and removing
// a temporary file in it.
func ProbeWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotWritable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	tmpFile, err := os.CreateTemp(dir, ".cbzconv-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotWritable, err)
	}
	path := tmpFile.Name()
	closeErr := tmpFile.Close()
	removeErr := os.Remove(path)
	if closeErr != nil {
		return fmt.Errorf("%w: %v", ErrNotWritable, closeErr)
	}
	if removeErr != nil {
		return fmt.Errorf("%w: %v", ErrNotWritable, removeErr)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ExpandHome replaces a leading "~" with the user's home directory.
// Paths without a leading "~" are returned unchanged.
//
// Examples:
//   - "~" -> "/home/me"
//   - "~/Downloads" -> "/home/me/Downloads"
//   - "~other/x" -> "~other/x" (other users are not resolved)
//   - "/tmp/out" -> "/tmp/out"
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// HasExtension reports whether path ends with one of exts, ignoring case.
// Extensions include the leading dot.
func HasExtension(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// TrimExtension returns name without its final extension.
// Names whose only dot is the first character are returned unchanged.
func TrimExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) == len(name) {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
