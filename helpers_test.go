package cbzconv_test

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/alnah/go-cbzconv"
	"github.com/alnah/go-cbzconv/internal/render"
)

// webp1x1 is a lossless 1x1 WebP image.
const webp1x1 = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

type member struct {
	name string
	data []byte
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func webpBytes(t *testing.T) []byte {
	t.Helper()

	data, err := base64.StdEncoding.DecodeString(webp1x1)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// pngPages returns n PNG members named 001.png, 002.png, ...
func pngPages(t *testing.T, n, w, h int) []member {
	t.Helper()

	data := pngBytes(t, w, h)
	members := make([]member, n)
	for i := range members {
		members[i] = member{name: fmt.Sprintf("%03d.png", i+1), data: data}
	}
	return members
}

func writeCBZ(t *testing.T, path string, members ...member) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(m.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

// cbzSource writes a CBZ at dir/name and returns it as a Source.
func cbzSource(t *testing.T, dir, name string, members ...member) cbzconv.Source {
	t.Helper()

	path := filepath.Join(dir, name)
	writeCBZ(t, path, members...)
	src, err := cbzconv.FileSource(path)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

func newConverter(t *testing.T, opts ...cbzconv.Option) *cbzconv.Converter {
	t.Helper()

	opts = append([]cbzconv.Option{cbzconv.WithScratchDir(filepath.Join(t.TempDir(), "scratch"))}, opts...)
	conv, err := cbzconv.NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	return conv
}

func newOutput(t *testing.T) *cbzconv.DirOutput {
	t.Helper()

	out, err := cbzconv.NewDirOutput(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("NewDirOutput() error = %v", err)
	}
	return out
}

func pageDims(t *testing.T, path string) []types.Dim {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	dims, err := api.PageDims(bytes.NewReader(data), render.PDFConfig(false))
	if err != nil {
		t.Fatalf("PageDims(%s) error = %v", filepath.Base(path), err)
	}
	return dims
}

func artifactNames(res *cbzconv.Result) []string {
	names := make([]string, len(res.Artifacts))
	for i, a := range res.Artifacts {
		names[i] = a.Name
	}
	return names
}
