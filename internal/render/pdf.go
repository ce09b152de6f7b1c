package render

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-cbzconv/internal/archive"
	"github.com/alnah/go-cbzconv/internal/normalize"
)

func init() {
	// pdfcpu would otherwise create a config directory under the user's
	// home on first use.
	api.DisableConfigDir()
}

// PDFConfig returns the pdfcpu configuration shared by rendering and
// merging. compress selects object and xref streams, pdfcpu's most compact
// writer mode.
func PDFConfig(compress bool) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = compress
	conf.WriteXRefStream = compress
	return conf
}

// PDF renders entries as a PDF with one page per image.
// Each page has the pixel dimensions of its image, unscaled, and the image
// fills it edge to edge. There are no page margins: a fixed margin band
// would letterbox every page once the page is sized to its image.
type PDF struct {
	norm *normalize.Normalizer
}

// NewPDF returns a PDF renderer using norm for scratch files.
func NewPDF(norm *normalize.Normalizer) *PDF {
	return &PDF{norm: norm}
}

// Render writes one PDF document containing the entries to w.
// Images are normalized one at a time and only their encoded bytes are held
// until the document is written.
func (p *PDF) Render(w io.Writer, entries []archive.Entry, opts Options) (Stats, error) {
	var assets []normalize.Asset
	defer func() {
		for _, a := range assets {
			p.norm.Release(a.Path)
		}
	}()

	st, err := walk(p.norm, entries, opts, func(a normalize.Asset) (bool, error) {
		assets = append(assets, a)
		return true, nil
	})
	if err != nil {
		return st, err
	}
	if len(assets) == 0 {
		return st, ErrNoPages
	}

	readers := make([]io.Reader, len(assets))
	files := make([]*lazyFile, len(assets))
	for i, a := range assets {
		files[i] = &lazyFile{path: a.Path}
		readers[i] = files[i]
	}
	defer func() {
		for _, f := range files {
			f.close()
		}
	}()

	// A nil import config places every image full page, sized to the image.
	if err := api.ImportImages(nil, w, readers, nil, PDFConfig(opts.Compress)); err != nil {
		return st, fmt.Errorf("writing pdf: %w", err)
	}
	return st, nil
}

// lazyFile opens its file on first read and closes it at EOF.
type lazyFile struct {
	path string
	f    *os.File
	done bool
}

func (l *lazyFile) Read(b []byte) (int, error) {
	if l.done {
		return 0, io.EOF
	}
	if l.f == nil {
		f, err := os.Open(l.path) // #nosec G304 -- scratch path
		if err != nil {
			return 0, err
		}
		l.f = f
	}
	n, err := l.f.Read(b)
	if err == io.EOF {
		l.close()
		l.done = true
	}
	return n, err
}

func (l *lazyFile) close() {
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
}
