// Package merge joins batch PDFs into one document.
//
// Batches are read one at a time. The pages of a batch, and every object
// they reach, are written to the output under new object numbers before the
// next batch is opened, so at most one batch is held in memory. The page
// tree, the catalog and the cross-reference table are written last. Each
// batch file is deleted as soon as it has been copied.
package merge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/alnah/go-cbzconv/internal/render"
)

// ErrNoInput indicates Merge was called without batch files.
var ErrNoInput = errors.New("no batch files to merge")

// maxTreeDepth bounds page tree recursion on malformed input.
const maxTreeDepth = 64

// Merge writes the pages of every PDF in paths, in order, to w.
// compress must match the setting the batches were rendered with.
// All batch files are deleted when Merge returns, whatever the outcome.
func Merge(w io.Writer, paths []string, compress bool) error {
	if len(paths) == 0 {
		return ErrNoInput
	}
	defer func() {
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}()

	if len(paths) == 1 {
		return copyFile(w, paths[0])
	}

	pw := newWriter(w)
	pw.header()
	for i, p := range paths {
		if err := pw.appendBatch(p, compress); err != nil {
			return fmt.Errorf("merging batch %d of %d: %w", i+1, len(paths), err)
		}
		_ = os.Remove(p)
	}
	return pw.finish()
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path) // #nosec G304 -- scratch path
	if err != nil {
		return fmt.Errorf("opening batch: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copying batch: %w", err)
	}
	return nil
}

// writer emits a PDF file object by object and keeps only the offsets of
// what it wrote and the page references.
type writer struct {
	bw      *bufio.Writer
	n       int64
	err     error
	offsets []int64 // by object number; -1 until written
	pages   int     // object number of the page tree root
	catalog int
	kids    types.Array
}

func newWriter(w io.Writer) *writer {
	pw := &writer{bw: bufio.NewWriterSize(w, 64<<10), offsets: []int64{0}}
	pw.pages = pw.alloc()
	pw.catalog = pw.alloc()
	return pw
}

func (pw *writer) alloc() int {
	pw.offsets = append(pw.offsets, -1)
	return len(pw.offsets) - 1
}

func (pw *writer) write(p []byte) {
	if pw.err != nil {
		return
	}
	n, err := pw.bw.Write(p)
	pw.n += int64(n)
	pw.err = err
}

func (pw *writer) printf(format string, args ...any) {
	pw.write(fmt.Appendf(nil, format, args...))
}

func (pw *writer) header() {
	pw.write([]byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"))
}

// writeObject writes o as object nr. Stream lengths are recomputed from the
// raw bytes.
func (pw *writer) writeObject(nr int, o types.Object) error {
	pw.offsets[nr] = pw.n
	switch o := o.(type) {
	case types.StreamDict:
		o.Dict["Length"] = types.Integer(len(o.Raw))
		pw.printf("%d 0 obj\n%s\nstream\n", nr, serialize(o.Dict))
		pw.write(o.Raw)
		pw.write([]byte("\nendstream\nendobj\n"))
	default:
		pw.printf("%d 0 obj\n%s\nendobj\n", nr, serialize(o))
	}
	return pw.err
}

// finish writes the page tree, the catalog, the cross-reference table and
// the trailer.
func (pw *writer) finish() error {
	root := types.IndirectRef{ObjectNumber: types.Integer(pw.pages)}
	if err := pw.writeObject(pw.pages, types.Dict{
		"Type":  types.Name("Pages"),
		"Kids":  pw.kids,
		"Count": types.Integer(len(pw.kids)),
	}); err != nil {
		return err
	}
	if err := pw.writeObject(pw.catalog, types.Dict{
		"Type":  types.Name("Catalog"),
		"Pages": root,
	}); err != nil {
		return err
	}

	xref := pw.n
	pw.printf("xref\n0 %d\n", len(pw.offsets))
	pw.write([]byte("0000000000 65535 f \n"))
	for _, off := range pw.offsets[1:] {
		if off < 0 {
			pw.write([]byte("0000000000 65535 f \n"))
			continue
		}
		pw.printf("%010d 00000 n \n", off)
	}
	pw.printf("trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(pw.offsets), pw.catalog, xref)
	if pw.err != nil {
		return fmt.Errorf("writing merged pdf: %w", pw.err)
	}
	if err := pw.bw.Flush(); err != nil {
		return fmt.Errorf("writing merged pdf: %w", err)
	}
	return nil
}

// appendBatch copies the pages of the batch at path to the output.
func (pw *writer) appendBatch(path string, compress bool) error {
	f, err := os.Open(path) // #nosec G304 -- scratch path
	if err != nil {
		return fmt.Errorf("opening batch: %w", err)
	}
	defer func() { _ = f.Close() }()

	ctx, err := api.ReadContext(f, render.PDFConfig(compress))
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	bc := &batchCopy{pw: pw, ctx: ctx, refs: make(map[int]int)}
	pages, err := bc.collectPages()
	if err != nil {
		return err
	}
	for _, p := range pages {
		nr := pw.alloc()
		bc.refs[p.objNr] = nr
		pw.kids = append(pw.kids, types.IndirectRef{ObjectNumber: types.Integer(nr)})
	}
	for _, p := range pages {
		if err := bc.copyPage(p); err != nil {
			return err
		}
	}
	return nil
}

// batchCopy renumbers the objects of one batch into the output.
type batchCopy struct {
	pw      *writer
	ctx     *model.Context
	refs    map[int]int // batch object number -> output object number
	pending []types.IndirectRef
}

type page struct {
	objNr int
	dict  types.Dict // with inherited attributes resolved
}

// inheritable lists the page attributes a page tree node passes down.
var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

func (bc *batchCopy) dict(o types.Object) (types.Dict, error) {
	o, err := bc.ctx.Dereference(o)
	if err != nil {
		return nil, err
	}
	d, ok := o.(types.Dict)
	if !ok {
		return nil, fmt.Errorf("expected dictionary, got %T", o)
	}
	return d, nil
}

func (bc *batchCopy) collectPages() ([]page, error) {
	if bc.ctx.Root == nil {
		return nil, errors.New("missing catalog")
	}
	cat, err := bc.dict(*bc.ctx.Root)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	root, ok := cat["Pages"].(types.IndirectRef)
	if !ok {
		return nil, errors.New("catalog has no page tree")
	}
	var pages []page
	if err := bc.walkTree(root, types.Dict{}, &pages, 0); err != nil {
		return nil, err
	}
	return pages, nil
}

func (bc *batchCopy) walkTree(ref types.IndirectRef, inherited types.Dict, pages *[]page, depth int) error {
	if depth > maxTreeDepth {
		return errors.New("page tree too deep")
	}
	d, err := bc.dict(ref)
	if err != nil {
		return fmt.Errorf("reading page tree: %w", err)
	}

	if _, node := d["Kids"]; !node {
		p := types.Dict{}
		for k, v := range inherited {
			p[k] = v
		}
		for k, v := range d {
			p[k] = v
		}
		*pages = append(*pages, page{objNr: int(ref.ObjectNumber), dict: p})
		return nil
	}

	// Intermediate nodes collapse into the output's single root.
	bc.refs[int(ref.ObjectNumber)] = bc.pw.pages
	attrs := types.Dict{}
	for k, v := range inherited {
		attrs[k] = v
	}
	for _, k := range inheritable {
		if v, ok := d[k]; ok {
			attrs[k] = v
		}
	}

	kidsObj, err := bc.ctx.Dereference(d["Kids"])
	if err != nil {
		return fmt.Errorf("reading page tree: %w", err)
	}
	kids, _ := kidsObj.(types.Array)
	for _, k := range kids {
		kr, ok := k.(types.IndirectRef)
		if !ok {
			return fmt.Errorf("page tree kid is %T, want reference", k)
		}
		if err := bc.walkTree(kr, attrs, pages, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// copyPage writes the page under its reserved number, then every object it
// reaches that was not copied yet.
func (bc *batchCopy) copyPage(p page) error {
	d := make(types.Dict, len(p.dict))
	for k, v := range p.dict {
		if k != "Parent" {
			d[k] = v
		}
	}
	out, err := bc.rewrite(d)
	if err != nil {
		return err
	}
	nd := out.(types.Dict)
	nd["Parent"] = types.IndirectRef{ObjectNumber: types.Integer(bc.pw.pages)}
	if err := bc.pw.writeObject(bc.refs[p.objNr], nd); err != nil {
		return err
	}

	for len(bc.pending) > 0 {
		ref := bc.pending[0]
		bc.pending = bc.pending[1:]

		o, err := bc.ctx.Dereference(ref)
		if err != nil {
			return fmt.Errorf("reading object %d: %w", ref.ObjectNumber, err)
		}
		no, err := bc.rewrite(o)
		if err != nil {
			return err
		}
		if err := bc.pw.writeObject(bc.refs[int(ref.ObjectNumber)], no); err != nil {
			return err
		}
	}
	return nil
}

// rewrite returns a copy of o with references mapped to output numbers.
// References seen for the first time are queued for copying.
func (bc *batchCopy) rewrite(o types.Object) (types.Object, error) {
	switch o := o.(type) {
	case types.IndirectRef:
		return bc.ref(o), nil
	case *types.IndirectRef:
		return bc.ref(*o), nil
	case types.Dict:
		nd := make(types.Dict, len(o))
		for k, v := range o {
			if v == nil {
				continue
			}
			nv, err := bc.rewrite(v)
			if err != nil {
				return nil, err
			}
			nd[k] = nv
		}
		return nd, nil
	case types.Array:
		na := make(types.Array, len(o))
		for i, v := range o {
			nv, err := bc.rewrite(v)
			if err != nil {
				return nil, err
			}
			na[i] = nv
		}
		return na, nil
	case types.StreamDict:
		return bc.rewriteStream(o)
	case *types.StreamDict:
		return bc.rewriteStream(*o)
	default:
		return o, nil
	}
}

func (bc *batchCopy) rewriteStream(sd types.StreamDict) (types.Object, error) {
	if sd.Raw == nil && sd.StreamLength != nil && *sd.StreamLength > 0 {
		return nil, errors.New("stream content not loaded")
	}
	d, err := bc.rewrite(sd.Dict)
	if err != nil {
		return nil, err
	}
	return types.StreamDict{Dict: d.(types.Dict), Raw: sd.Raw}, nil
}

func (bc *batchCopy) ref(r types.IndirectRef) types.IndirectRef {
	old := int(r.ObjectNumber)
	nr, ok := bc.refs[old]
	if !ok {
		nr = bc.pw.alloc()
		bc.refs[old] = nr
		bc.pending = append(bc.pending, r)
	}
	return types.IndirectRef{ObjectNumber: types.Integer(nr)}
}

func serialize(o types.Object) string {
	if o == nil {
		return "null"
	}
	return o.PDFString()
}
