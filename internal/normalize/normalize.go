// Package normalize turns archive image entries into files a PDF or EPUB
// writer can embed directly.
//
// JPEG and PNG are embedded as they are. Every other decodable format
// (WebP, GIF, BMP, TIFF) is re-encoded as JPEG. With compression enabled,
// every image is re-encoded as JPEG at a lower quality. Only one image is
// decoded at a time.
package normalize

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoder
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// JPEG qualities used when re-encoding.
const (
	TranscodeQuality = 90
	CompressQuality  = 75
)

// Decoder limits. Larger images are rejected before decoding.
const (
	MaxDimension       = 32768
	MaxPixels    int64 = 64 * 1024 * 1024
)

// Supported output formats.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// ErrDecode indicates the entry is not a decodable image.
var ErrDecode = errors.New("cannot decode image")

// Asset is a normalized image on disk.
type Asset struct {
	Path       string
	Width      int
	Height     int
	Format     string // FormatJPEG or FormatPNG
	Transcoded bool   // Path was written by Normalize
}

// Ext returns the file extension for the asset format.
func (a Asset) Ext() string {
	if a.Format == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// MediaType returns the MIME type for the asset format.
func (a Asset) MediaType() string {
	if a.Format == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

// Normalizer writes scratch files into one directory.
// It is not safe for concurrent use.
type Normalizer struct {
	dir string
	seq int
}

// New returns a Normalizer writing scratch files to dir.
func New(dir string) *Normalizer {
	return &Normalizer{dir: dir}
}

func (n *Normalizer) next(ext string) string {
	n.seq++
	return filepath.Join(n.dir, fmt.Sprintf("temp_image_%06d%s", n.seq, ext))
}

// Materialize copies r into a new scratch file and returns its path.
func (n *Normalizer) Materialize(r io.Reader) (string, error) {
	path := n.next(".img")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) // #nosec G304 -- scratch path
	if err != nil {
		return "", fmt.Errorf("creating scratch file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("copying entry: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("closing scratch file: %w", err)
	}
	return path, nil
}

// Normalize inspects the image at path and returns an embeddable asset.
// When the image is re-encoded, the returned Path is a new scratch file and
// path itself is left in place. Returns ErrDecode for unreadable images.
func (n *Normalizer) Normalize(path string, compress bool) (Asset, error) {
	f, err := os.Open(path) // #nosec G304 -- scratch path
	if err != nil {
		return Asset{}, fmt.Errorf("opening scratch file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := checkBounds(cfg.Width, cfg.Height); err != nil {
		return Asset{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Asset{}, fmt.Errorf("rewinding scratch file: %w", err)
	}

	native := format == FormatJPEG || format == FormatPNG
	if native && !compress {
		// PNG data is decoded by the PDF writer, so a truncated file would
		// fail the whole batch instead of one page.
		if format == FormatPNG {
			if _, err := imaging.Decode(f); err != nil {
				return Asset{}, fmt.Errorf("%w: %v", ErrDecode, err)
			}
		}
		return Asset{Path: path, Width: cfg.Width, Height: cfg.Height, Format: format}, nil
	}

	img, err := imaging.Decode(f)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	quality := TranscodeQuality
	if compress {
		quality = CompressQuality
	}
	out := n.next(".jpg")
	if err := writeJPEG(out, flatten(img), quality); err != nil {
		return Asset{}, err
	}

	b := img.Bounds()
	return Asset{
		Path:       out,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Format:     FormatJPEG,
		Transcoded: true,
	}, nil
}

// Release removes scratch files. Missing files are ignored.
func (n *Normalizer) Release(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}

func checkBounds(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid bounds %dx%d", ErrDecode, width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: dimension exceeds limit (%dx%d)", ErrDecode, width, height)
	}
	if int64(width)*int64(height) > MaxPixels {
		return fmt.Errorf("%w: pixel count exceeds limit (%dx%d)", ErrDecode, width, height)
	}
	return nil
}

// flatten composites images with transparency onto white, since JPEG has
// no alpha channel.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) // #nosec G304 -- scratch path
	if err != nil {
		return fmt.Errorf("creating scratch file: %w", err)
	}
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encoding jpeg: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("closing scratch file: %w", err)
	}
	return nil
}
