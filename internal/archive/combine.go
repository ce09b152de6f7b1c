package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"
)

// EntryName returns the name an entry receives inside a combined archive.
func EntryName(index int, name, entry string) string {
	return fmt.Sprintf("%09d_%s_%s", index, name, entry)
}

// Combiner writes the entries of several archives into one zip stream.
// Each entry is read in full into a staging file before it is added, so an
// entry that fails to read never reaches the output.
type Combiner struct {
	zw       *zip.Writer
	stageDir string
	report   func(string)
}

// NewCombiner returns a Combiner writing to w and staging entries in
// stageDir (the system temp directory when empty).
// report receives one message per skipped entry; it may be nil.
func NewCombiner(w io.Writer, stageDir string, report func(string)) *Combiner {
	if report == nil {
		report = func(string) {}
	}
	return &Combiner{zw: zip.NewWriter(w), stageDir: stageDir, report: report}
}

// Add copies every entry of a, directories included, in native order.
// Entries that fail to copy are reported and skipped.
// Returns the number of entries written.
func (c *Combiner) Add(index int, name string, a *Archive) int {
	written := 0
	for _, e := range a.entries {
		target := EntryName(index, name, e.Name)
		if err := c.copyEntry(target, e); err != nil {
			c.report(fmt.Sprintf("Skipping entry %s of %s: %v", e.Name, name, err))
			continue
		}
		written++
	}
	return written
}

func (c *Combiner) copyEntry(target string, e Entry) error {
	hdr := &zip.FileHeader{
		Name:   target,
		Method: zip.Store,
	}
	if e.file != nil {
		hdr.Modified = e.file.Modified
	}
	if e.IsDir {
		_, err := c.zw.CreateHeader(hdr)
		return err
	}

	staged, err := c.stage(e)
	if err != nil {
		return err
	}
	defer func() {
		_ = staged.Close()
		_ = os.Remove(staged.Name())
	}()

	w, err := c.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, staged)
	return err
}

// stage copies the content of e to a temporary file, rewound. The zip
// reader checks the CRC at end of entry, so a returned file is a clean read.
func (c *Combiner) stage(e Entry) (*os.File, error) {
	rc, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	f, err := os.CreateTemp(c.stageDir, "combine-entry-*")
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(f, rc); err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}
	return f, nil
}

// Close finishes the zip stream. It does not close the underlying writer.
func (c *Combiner) Close() error {
	return c.zw.Close()
}
