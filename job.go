package cbzconv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-cbzconv/internal/archive"
	"github.com/alnah/go-cbzconv/internal/merge"
	"github.com/alnah/go-cbzconv/internal/render"
)

const mergedArchiveName = "merged_sources.cbz"

// run is the state of one Convert call.
type run struct {
	c     *Converter
	job   Job
	names *NamingContext
	taken nameSet
	order archive.Order
	res   *Result
}

func newRun(c *Converter, job Job, existing []string) *run {
	order := archive.OrderByName
	if job.Sort == SortArchive {
		order = archive.OrderNative
	}
	return &run{
		c:     c,
		job:   job,
		names: NewNamingContext(),
		taken: newNameSet(existing),
		order: order,
		res:   &Result{},
	}
}

func (r *run) status(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.res.Status = append(r.res.Status, msg)
	r.c.logger.Info(msg)
}

// fail records a non-fatal failure.
func (r *run) fail(err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.res.Status = append(r.res.Status, msg)
	r.res.Errors = append(r.res.Errors, err)
	r.c.logger.Warn(msg, "error", err)
}

func (r *run) progress(msg string) {
	if r.c.progress != nil {
		r.c.progress(msg)
	}
}

// skipSource records why a source contributed nothing.
func (r *run) skipSource(name string, err error) {
	if errors.Is(err, ErrEmptyArchive) {
		r.fail(err, "No images found in %s", name)
		return
	}
	r.fail(err, "Failed to read %s: %v", name, err)
}

func (r *run) convertEach() error {
	sources := r.job.Sources
	for i, src := range sources {
		name := r.names.DisplayName(src)
		r.res.SourcesAttempted++
		if len(sources) > 1 {
			r.progress(fmt.Sprintf("Processing file %d of %d: %s", i+1, len(sources), name))
		}

		a, spooled, err := r.openSource(i, src)
		if err != nil {
			r.skipSource(name, err)
			continue
		}
		base := r.names.SourceBaseName(sources, i, r.job.ChapterNames, r.job.CustomName)
		err = r.convertArchive(name, base, a)
		_ = a.Close()
		_ = r.c.scratch.Remove(spooled)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) convertMerged() error {
	sources := r.job.Sources
	r.res.SourcesAttempted = len(sources)
	label := r.names.GroupName(sources[0])

	f, err := r.c.scratch.Create(mergedArchiveName)
	if err != nil {
		return fmt.Errorf("creating merged archive: %w", err)
	}
	comb := archive.NewCombiner(f, r.c.scratch.Dir(), func(msg string) {
		r.c.logger.Warn(msg)
		r.res.Status = append(r.res.Status, msg)
	})

	added := 0
	for i, src := range sources {
		name := r.names.DisplayName(src)
		r.progress(fmt.Sprintf("Merging file %d of %d: %s", i+1, len(sources), name))

		a, spooled, err := r.openSource(i, src)
		if err != nil {
			r.skipSource(name, err)
			continue
		}
		if comb.Add(i, name, a) > 0 {
			added++
		}
		_ = a.Close()
		_ = r.c.scratch.Remove(spooled)
	}

	err = comb.Close()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing merged archive: %w", err)
	}
	if added == 0 {
		return nil
	}

	a, err := archive.Open(r.c.scratch.Path(mergedArchiveName))
	if err != nil {
		r.skipSource(label, fmt.Errorf("%w: %v", ErrSourceIO, err))
		return nil
	}
	defer func() { _ = a.Close() }()

	base := r.names.MergedBaseName(sources, r.job.ChapterNames, r.job.CustomName)
	return r.convertArchive(label, base, a)
}

// openSource spools source i into the scratch directory and opens it.
// RAR archives are repacked into zip on the way. It returns the archive and
// the scratch file name backing it.
func (r *run) openSource(i int, src Source) (*archive.Archive, string, error) {
	spooled := fmt.Sprintf("source_%03d.cbz", i)

	if err := r.spool(spooled, src); err != nil {
		_ = r.c.scratch.Remove(spooled)
		return nil, "", err
	}

	a, err := archive.Open(r.c.scratch.Path(spooled))
	if err != nil {
		_ = r.c.scratch.Remove(spooled)
		if errors.Is(err, archive.ErrEmptyArchive) {
			return nil, "", fmt.Errorf("%w: %s", ErrEmptyArchive, r.names.DisplayName(src))
		}
		return nil, "", fmt.Errorf("%w: %v", ErrSourceIO, err)
	}
	return a, spooled, nil
}

func (r *run) spool(name string, src Source) error {
	rc, err := src.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceIO, err)
	}
	defer func() { _ = rc.Close() }()

	f, err := r.c.scratch.Create(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceIO, err)
	}

	br := bufio.NewReader(rc)
	header, _ := br.Peek(8)
	if archive.IsRAR(header) {
		var n int
		n, err = archive.Repack(br, f)
		r.c.logger.Debug("repacked rar archive", "source", src.Name, "entries", n)
	} else {
		_, err = io.Copy(f, br)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceIO, err)
	}
	return nil
}

// convertArchive splits the pages of a into parts and writes each one.
// Only an output failure is returned; anything else is recorded.
func (r *run) convertArchive(label, base string, a *archive.Archive) error {
	pages := a.Pages(r.order)
	if len(pages) == 0 {
		r.skipSource(label, fmt.Errorf("%w: %s", ErrEmptyArchive, label))
		return nil
	}

	parts := SplitRanges(len(pages), r.job.MaxPages)
	for pi, pr := range parts {
		name := r.taken.claim(PartName(base, pi+1, len(parts), r.job.Format))
		r.res.PartsAttempted++

		prefix := ""
		if len(parts) > 1 {
			prefix = fmt.Sprintf("Processing part %d of %d - ", pi+1, len(parts))
			r.progress(strings.TrimSuffix(prefix, " - "))
		}

		art, err := r.writePart(name, prefix, pages[pr.Start:pr.End])
		art.Source, art.Part, art.Parts = label, pi+1, len(parts)
		r.res.SkippedPages += art.Skipped
		if errors.Is(err, ErrOutputUnavailable) {
			return err
		}
		if err != nil {
			r.fail(err, "Failed to write %s: %v", name, err)
			continue
		}

		r.res.Artifacts = append(r.res.Artifacts, art)
		if art.Skipped > 0 {
			r.status("Converted %s (%d pages, %d skipped)", name, art.Pages, art.Skipped)
		} else {
			r.status("Converted %s (%d pages)", name, art.Pages)
		}
	}
	return nil
}

// writePart writes one output file. A partially written file is removed.
// Write failures on the destination wrap ErrOutputUnavailable.
func (r *run) writePart(name, prefix string, entries []archive.Entry) (Artifact, error) {
	art := Artifact{Name: name}

	w, err := r.job.Output.Create(name)
	if err != nil {
		return art, fmt.Errorf("%w: creating %s: %v", ErrOutputUnavailable, name, err)
	}
	cw := &countingWriter{w: w}

	st, err := r.renderPart(cw, name, prefix, entries)
	if cerr := w.Close(); cerr != nil && cw.err == nil {
		cw.err = cerr
	}
	art.Pages, art.Skipped, art.Bytes = st.Pages, st.Skipped, cw.n

	if err == nil && cw.err == nil {
		return art, nil
	}
	if rerr := r.job.Output.Remove(name); rerr != nil {
		r.c.logger.Warn("removing partial output failed", "output", name, "error", rerr)
	}
	if cw.err != nil {
		return art, fmt.Errorf("%w: writing %s: %v", ErrOutputUnavailable, name, cw.err)
	}
	if errors.Is(err, render.ErrNoPages) {
		return art, fmt.Errorf("%w: no page of %s could be decoded", ErrDecodeFailure, name)
	}
	return art, err
}

func (r *run) renderPart(w io.Writer, name, prefix string, entries []archive.Entry) (render.Stats, error) {
	opts := render.Options{
		Compress: r.job.Compress,
		Total:    len(entries),
		Logger:   r.c.logger.With("output", name),
	}
	if r.c.progress != nil {
		opts.Progress = func(msg string) { r.c.progress(prefix + msg) }
	}

	if r.job.Format == FormatEPUB {
		meta := render.Metadata{
			Title:    strings.TrimSuffix(name, r.job.Format.Ext()),
			Language: r.c.cfg.language,
		}
		return r.c.epub.Render(w, entries, meta, opts)
	}

	batches := SplitRanges(len(entries), r.job.BatchSize)
	if len(batches) <= 1 {
		return r.c.pdf.Render(w, entries, opts)
	}
	return r.renderBatches(w, entries, batches, opts)
}

// renderBatches renders each batch to a scratch PDF and merges them into w.
func (r *run) renderBatches(w io.Writer, entries []archive.Entry, batches []Range, opts render.Options) (render.Stats, error) {
	var total render.Stats
	var paths []string
	defer func() {
		// Merge deletes what it consumed; this catches early exits.
		for _, p := range paths {
			_ = r.c.scratch.Remove(p)
		}
	}()

	for bi, b := range batches {
		batchName := fmt.Sprintf("temp_memory_batch_%d.pdf", bi)
		bopts := opts
		bopts.Offset = b.Start
		if opts.Progress != nil {
			prefix := fmt.Sprintf("Processing memory batch %d of %d - ", bi+1, len(batches))
			bopts.Progress = func(msg string) { opts.Progress(prefix + msg) }
		}

		f, err := r.c.scratch.Create(batchName)
		if err != nil {
			return total, fmt.Errorf("creating batch file: %w", err)
		}
		st, err := r.c.pdf.Render(f, entries[b.Start:b.End], bopts)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		total.Pages += st.Pages
		total.Skipped += st.Skipped

		if errors.Is(err, render.ErrNoPages) {
			_ = r.c.scratch.Remove(batchName)
			continue
		}
		if err != nil {
			_ = r.c.scratch.Remove(batchName)
			return total, fmt.Errorf("rendering batch %d of %d: %w", bi+1, len(batches), err)
		}
		paths = append(paths, r.c.scratch.Path(batchName))
	}

	if len(paths) == 0 {
		return total, render.ErrNoPages
	}
	if err := merge.Merge(w, paths, opts.Compress); err != nil {
		return total, err
	}
	return total, nil
}

// countingWriter counts bytes and remembers the first write error.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil && c.err == nil {
		c.err = err
	}
	return n, err
}
