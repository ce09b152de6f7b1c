// Package render writes ordered archive entries as PDF documents or EPUB
// containers.
//
// Every entry goes through the normalize package first. An entry that
// cannot be read or decoded is reported and left out; the remaining
// entries are still rendered in order. Render returns ErrNoPages when not a
// single entry could be used.
package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alnah/go-cbzconv/internal/archive"
	"github.com/alnah/go-cbzconv/internal/normalize"
)

// ErrNoPages indicates none of the entries produced a page.
var ErrNoPages = errors.New("no renderable pages")

// Options controls one render call.
type Options struct {
	Compress bool

	// Offset and Total number the per-image progress messages, so a batch
	// reports its position within the whole part.
	Offset int
	Total  int

	Progress func(string)
	Logger   *slog.Logger
}

// Stats reports what a render call produced.
type Stats struct {
	Pages   int
	Skipped int
}

func (o Options) progress(msg string) {
	if o.Progress != nil {
		o.Progress(msg)
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// pageFunc receives each usable page, in entry order.
// The asset files are released after pageFunc returns unless keep is true.
type pageFunc func(asset normalize.Asset) (keep bool, err error)

// walk materializes and normalizes entries one at a time.
// Per-entry failures are logged and counted; an error from fn aborts.
func walk(norm *normalize.Normalizer, entries []archive.Entry, opts Options, fn pageFunc) (Stats, error) {
	var st Stats
	total := opts.Total
	if total < opts.Offset+len(entries) {
		total = opts.Offset + len(entries)
	}

	for i, e := range entries {
		opts.progress(fmt.Sprintf("Processing image file %d of %d", opts.Offset+i+1, total))

		asset, src, err := prepare(norm, e, opts.Compress)
		if err != nil {
			st.Skipped++
			opts.logger().Warn("skipping page", "entry", e.Name, "error", err)
			continue
		}

		keep, err := fn(asset)
		if !keep {
			norm.Release(src, asset.Path)
		} else if asset.Path != src {
			norm.Release(src)
		}
		if err != nil {
			return st, err
		}
		st.Pages++
	}
	return st, nil
}

func prepare(norm *normalize.Normalizer, e archive.Entry, compress bool) (normalize.Asset, string, error) {
	rc, err := e.Open()
	if err != nil {
		return normalize.Asset{}, "", fmt.Errorf("opening entry: %w", err)
	}
	src, err := norm.Materialize(rc)
	_ = rc.Close()
	if err != nil {
		return normalize.Asset{}, "", err
	}

	asset, err := norm.Normalize(src, compress)
	if err != nil {
		norm.Release(src)
		return normalize.Asset{}, "", err
	}
	return asset, src, nil
}
