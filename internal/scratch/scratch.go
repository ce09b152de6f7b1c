// Package scratch manages the directory that holds a job's temporary files:
// spooled source archives, per-image buffers and batch PDFs.
//
// The directory is cleared at the start of every job, so two jobs must never
// share it. TryLock takes a cross-process lock on a sibling lock file to
// enforce that.
package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another job holds the scratch area.
var ErrLocked = errors.New("scratch area is in use by another job")

// Area is one scratch directory.
type Area struct {
	dir string
}

// New creates dir if needed and returns its Area.
func New(dir string) (*Area, error) {
	if dir == "" {
		return nil, errors.New("scratch directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving scratch directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	return &Area{dir: abs}, nil
}

// Dir returns the absolute scratch directory.
func (a *Area) Dir() string { return a.dir }

// Path returns the path of name inside the scratch directory.
func (a *Area) Path(name string) string {
	return filepath.Join(a.dir, filepath.Base(name))
}

// Create creates or truncates a scratch file.
func (a *Area) Create(name string) (*os.File, error) {
	return os.OpenFile(a.Path(name), os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o600) // #nosec G304 -- scratch path
}

// Remove deletes a scratch file. A missing file is not an error.
func (a *Area) Remove(name string) error {
	if err := os.Remove(a.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Clear deletes everything inside the scratch directory.
func (a *Area) Clear() error {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return fmt.Errorf("reading scratch directory: %w", err)
	}
	var errs []error
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(a.dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LockPath returns the lock file guarding the area.
// It sits next to the directory so Clear never removes it.
func (a *Area) LockPath() string {
	return a.dir + ".lock"
}

// Lock is a held scratch lock.
type Lock struct {
	fl *flock.Flock
}

// TryLock acquires the area lock without blocking.
// Returns ErrLocked if another process holds it.
func (a *Area) TryLock() (*Lock, error) {
	fl := flock.New(a.LockPath())
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire scratch lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, a.LockPath())
	}
	return &Lock{fl: fl}, nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	return l.fl.Unlock()
}

// InUse reports whether another process currently holds the area lock.
func (a *Area) InUse() (bool, error) {
	l, err := a.TryLock()
	if errors.Is(err, ErrLocked) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, l.Unlock()
}
