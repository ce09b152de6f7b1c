package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/nwaples/rardecode"
)

// rarSignature prefixes RAR 1.5 through 5.0 archives.
var rarSignature = []byte("Rar!\x1a\x07")

// IsRAR reports whether header starts with the RAR signature.
func IsRAR(header []byte) bool {
	return bytes.HasPrefix(header, rarSignature)
}

// Repack reads a RAR archive from r and writes the same members, in the
// same order, as a zip archive to w. Returns the number of members written.
func Repack(r io.Reader, w io.Writer) (int, error) {
	rr, err := rardecode.NewReader(r, "")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	zw := zip.NewWriter(w)
	n := 0
	for {
		h, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = zw.Close()
			return n, fmt.Errorf("reading rar member: %w", err)
		}

		name := path.Clean(strings.ReplaceAll(h.Name, "\\", "/"))
		hdr := &zip.FileHeader{
			Name:     name,
			Method:   zip.Store,
			Modified: h.ModificationTime,
		}
		if h.IsDir {
			hdr.Name = name + "/"
			if _, err := zw.CreateHeader(hdr); err != nil {
				_ = zw.Close()
				return n, err
			}
			n++
			continue
		}

		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			_ = zw.Close()
			return n, err
		}
		if _, err := io.Copy(fw, rr); err != nil {
			_ = zw.Close()
			return n, fmt.Errorf("copying rar member %q: %w", h.Name, err)
		}
		n++
	}
	return n, zw.Close()
}
