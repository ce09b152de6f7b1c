package cbzconv

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/alnah/go-cbzconv/internal/assets"
	"github.com/alnah/go-cbzconv/internal/normalize"
	"github.com/alnah/go-cbzconv/internal/render"
	"github.com/alnah/go-cbzconv/internal/scratch"
)

// Converter runs conversion jobs one at a time.
// Create with NewConverter and call Convert for each job.
type Converter struct {
	mu       sync.Mutex
	cfg      converterConfig
	logger   *slog.Logger
	progress ProgressFunc

	scratch *scratch.Area
	norm    *normalize.Normalizer
	pdf     *render.PDF
	epub    *render.EPUB
}

// DefaultScratchDir returns the scratch directory used when none is set:
// a folder in the user cache directory, or in the system temp directory.
func DefaultScratchDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "cbzconv", "scratch")
	}
	return filepath.Join(os.TempDir(), "cbzconv-scratch")
}

// NewConverter creates a Converter. It creates the scratch directory and
// parses the EPUB templates.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:    converterConfig{scratchDir: DefaultScratchDir()},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	area, err := scratch.New(c.cfg.scratchDir)
	if err != nil {
		return nil, err
	}
	c.scratch = area

	loader, err := assets.NewAssetResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	if loader.HasCustomLoader() {
		c.logger.Debug("using custom EPUB assets", "path", c.cfg.assetPath)
	}

	c.norm = normalize.New(area.Dir())
	c.pdf = render.NewPDF(c.norm)
	c.epub, err = render.NewEPUB(c.norm, loader)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ScratchDir returns the absolute scratch directory.
func (c *Converter) ScratchDir() string {
	return c.scratch.Dir()
}

// Lock takes the cross-process lock on the scratch directory without
// waiting. It returns ErrBusy when another process holds it. Call the
// returned function to release it.
func (c *Converter) Lock() (unlock func() error, err error) {
	l, err := c.scratch.TryLock()
	if errors.Is(err, scratch.ErrLocked) {
		return nil, fmt.Errorf("%w: %v", ErrBusy, err)
	}
	if err != nil {
		return nil, err
	}
	return l.Unlock, nil
}

// Convert runs job and returns its result.
//
// Per-source and per-part failures are recorded in the result and the job
// goes on. An unusable output directory aborts the job with
// ErrOutputUnavailable. A job that writes no artifact returns its result
// together with an error wrapping ErrNothingProduced.
//
// Calls are serialized. The scratch directory is cleared before and after
// the job. Recovers from internal panics to prevent crashes from
// propagating to callers.
func (c *Converter) Convert(job Job) (res *Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	job = job.withDefaults()
	if err := job.Validate(); err != nil {
		return nil, err
	}

	existing, err := job.Output.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
	}

	if err := c.scratch.Clear(); err != nil {
		return nil, fmt.Errorf("clearing scratch directory: %w", err)
	}
	defer func() {
		if cerr := c.scratch.Clear(); cerr != nil {
			c.logger.Warn("scratch cleanup failed", "dir", c.scratch.Dir(), "error", cerr)
		}
	}()

	r := newRun(c, job, existing)
	if job.Merge {
		err = r.convertMerged()
	} else {
		err = r.convertEach()
	}
	if err != nil {
		return r.res, err
	}

	if len(r.res.Artifacts) == 0 {
		return r.res, fmt.Errorf("%w: %d source(s), %d part(s) attempted",
			ErrNothingProduced, r.res.SourcesAttempted, r.res.PartsAttempted)
	}
	return r.res, nil
}
