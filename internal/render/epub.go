package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"github.com/alnah/go-cbzconv/internal/archive"
	"github.com/alnah/go-cbzconv/internal/assets"
	"github.com/alnah/go-cbzconv/internal/normalize"
)

const epubMimetype = "application/epub+zip"

// Metadata describes one EPUB container.
type Metadata struct {
	Title    string
	Language string // defaults to "en"
	Modified time.Time
}

// epubPage is the template data for one page.
type epubPage struct {
	Number    int
	Title     string
	ImageHref string
	PageHref  string
	MediaType string
	Width     int
	Height    int
}

// epubPackage is the template data for content.opf and toc.ncx.
type epubPackage struct {
	Identifier string
	Title      string
	Language   string
	Modified   string
	Pages      []epubPage
}

// EPUB renders entries as an EPUB3 container with one XHTML page per image.
type EPUB struct {
	norm *normalize.Normalizer

	style     string
	container *template.Template
	pkg       *template.Template
	ncx       *template.Template
	page      *template.Template
}

// NewEPUB parses the default template set and stylesheet from loader.
func NewEPUB(norm *normalize.Normalizer, loader assets.AssetLoader) (*EPUB, error) {
	ts, err := loader.LoadTemplateSet(assets.DefaultTemplateSetName)
	if err != nil {
		return nil, fmt.Errorf("loading epub templates: %w", err)
	}
	style, err := loader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading epub style: %w", err)
	}

	e := &EPUB{norm: norm, style: style}
	parse := func(name, src string) *template.Template {
		if err != nil {
			return nil
		}
		var t *template.Template
		t, err = template.New(name).Funcs(template.FuncMap{"xml": xmlEscape}).Parse(src)
		return t
	}
	e.container = parse(assets.ContainerFile, ts.Container)
	e.pkg = parse(assets.PackageFile, ts.Package)
	e.ncx = parse(assets.NCXFile, ts.NCX)
	e.page = parse(assets.PageFile, ts.Page)
	if err != nil {
		return nil, fmt.Errorf("parsing epub templates: %w", err)
	}
	return e, nil
}

// Render writes one EPUB container holding the entries to w.
// Pages are streamed into the container as they are normalized.
func (e *EPUB) Render(w io.Writer, entries []archive.Entry, meta Metadata, opts Options) (Stats, error) {
	if meta.Language == "" {
		meta.Language = "en"
	}
	if meta.Modified.IsZero() {
		meta.Modified = time.Now()
	}

	zw := zip.NewWriter(w)
	if err := writeMimetype(zw); err != nil {
		return Stats{}, err
	}
	if err := e.writeTemplate(zw, "META-INF/container.xml", e.container, nil); err != nil {
		return Stats{}, err
	}
	if err := writeBytes(zw, "OEBPS/style.css", []byte(e.style)); err != nil {
		return Stats{}, err
	}

	var pages []epubPage
	st, err := walk(e.norm, entries, opts, func(a normalize.Asset) (bool, error) {
		n := len(pages) + 1
		p := epubPage{
			Number:    n,
			Title:     meta.Title,
			ImageHref: fmt.Sprintf("Images/image%d%s", n, a.Ext()),
			PageHref:  fmt.Sprintf("page%d.xhtml", n),
			MediaType: a.MediaType(),
			Width:     a.Width,
			Height:    a.Height,
		}
		if err := writeFile(zw, "OEBPS/"+p.ImageHref, a.Path); err != nil {
			return false, err
		}
		if err := e.writeTemplate(zw, "OEBPS/"+p.PageHref, e.page, p); err != nil {
			return false, err
		}
		pages = append(pages, p)
		return false, nil
	})
	if err != nil {
		_ = zw.Close()
		return st, err
	}
	if len(pages) == 0 {
		_ = zw.Close()
		return st, ErrNoPages
	}

	data := epubPackage{
		Identifier: uuid.NewString(),
		Title:      meta.Title,
		Language:   meta.Language,
		Modified:   meta.Modified.UTC().Format(time.RFC3339),
		Pages:      pages,
	}
	if err := e.writeTemplate(zw, "OEBPS/content.opf", e.pkg, data); err != nil {
		return st, err
	}
	if err := e.writeTemplate(zw, "OEBPS/toc.ncx", e.ncx, data); err != nil {
		return st, err
	}
	if err := zw.Close(); err != nil {
		return st, fmt.Errorf("finishing epub: %w", err)
	}
	return st, nil
}

// writeMimetype writes the uncompressed mimetype entry without a data
// descriptor, as the first member of the container.
func writeMimetype(zw *zip.Writer) error {
	body := []byte(epubMimetype)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "mimetype",
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(body),
		CompressedSize64:   uint64(len(body)),
		UncompressedSize64: uint64(len(body)),
	})
	if err != nil {
		return fmt.Errorf("writing mimetype: %w", err)
	}
	_, err = w.Write(body)
	return err
}

func (e *EPUB) writeTemplate(zw *zip.Writer, name string, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing %s: %w", t.Name(), err)
	}
	return writeBytes(zw, name, buf.Bytes())
}

func writeBytes(zw *zip.Writer, name string, b []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func writeFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path) // #nosec G304 -- scratch path
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	// Images are already compressed.
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func xmlEscape(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
