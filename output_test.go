package cbzconv_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alnah/go-cbzconv"
)

func TestNewDirOutput(t *testing.T) {
	t.Parallel()

	t.Run("creates missing directories", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "a", "b")
		out, err := cbzconv.NewDirOutput(dir)
		if err != nil {
			t.Fatalf("NewDirOutput() error = %v", err)
		}
		if out.Dir() != dir {
			t.Errorf("Dir() = %q, want %q", out.Dir(), dir)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("directory not created: %v", err)
		}
	})

	t.Run("file in the way", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := cbzconv.NewDirOutput(filepath.Join(path, "out"))
		if !errors.Is(err, cbzconv.ErrOutputUnavailable) {
			t.Errorf("NewDirOutput() error = %v, want ErrOutputUnavailable", err)
		}
	})
}

func TestDirOutput(t *testing.T) {
	t.Parallel()

	out := newOutput(t)

	w, err := out.Create("Series A.pdf")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := io.WriteString(w, "%PDF"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	names, err := out.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !slices.Equal(names, []string{"Series A.pdf"}) {
		t.Errorf("List() = %v, want [Series A.pdf]", names)
	}

	if _, err := out.Create("../escape.pdf"); err == nil {
		t.Error("Create() with a path should fail")
	}

	if err := out.Remove("Series A.pdf"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := out.Remove("Series A.pdf"); err != nil {
		t.Errorf("Remove() of a missing file error = %v", err)
	}
	if names, _ := out.List(); len(names) != 0 {
		t.Errorf("List() after Remove = %v", names)
	}
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "Series A")
	src := cbzSource(t, dir, "Chapter 1.cbz", pngPages(t, 1, 1, 1)...)

	if src.Name != "Chapter 1.cbz" || src.Parent != dir || src.ID != filepath.Join(dir, "Chapter 1.cbz") {
		t.Errorf("FileSource() = %+v", src)
	}
	rc, err := src.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = rc.Close()

	sources, err := cbzconv.FileSources(filepath.Join(dir, "Chapter 2.cbz"), filepath.Join(dir, "Chapter 1.cbz"))
	if err != nil {
		t.Fatalf("FileSources() error = %v", err)
	}
	if len(sources) != 2 || sources[0].Name != "Chapter 2.cbz" || sources[1].Name != "Chapter 1.cbz" {
		t.Errorf("FileSources() = %+v, want input order", sources)
	}
}
