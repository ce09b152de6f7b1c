package cbzconv_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alnah/go-cbzconv"
)

// mihonLibrary lays out a Mihon data directory under a temp root.
func mihonLibrary(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	page := pngPages(t, 1, 1, 1)
	for _, p := range []string{
		"downloads/MangaDex (EN)/Series B/Chapter 1.cbz",
		"downloads/MangaDex (EN)/Series B/Chapter 2.cbz",
		"downloads/MangaDex (EN)/series a/Chapter 1.cbz",
		"downloads/Other (EN)/Series B/Chapter 9.cbr",
	} {
		writeCBZ(t, filepath.Join(root, filepath.FromSlash(p)), page...)
	}

	for _, dir := range []string{
		"downloads/MangaDex (EN)/Empty Series",
		"downloads/.thumbnails/Hidden",
	} {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o750); err != nil {
			t.Fatal(err)
		}
	}
	notes := filepath.Join(root, "downloads", "MangaDex (EN)", "Series B", "notes.txt")
	if err := os.WriteFile(notes, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	return root
}

type seriesSummary struct {
	title    string
	ext      string
	chapters []string
}

func summarize(series []cbzconv.Series) []seriesSummary {
	out := make([]seriesSummary, len(series))
	for i, s := range series {
		out[i] = seriesSummary{title: s.Title, ext: s.Extension}
		for _, c := range s.Chapters {
			out[i].chapters = append(out[i].chapters, c.Name)
		}
	}
	return out
}

func TestScanLibrary(t *testing.T) {
	t.Parallel()

	root := mihonLibrary(t)
	want := []seriesSummary{
		{title: "series a", ext: "MangaDex (EN)", chapters: []string{"Chapter 1.cbz"}},
		{title: "Series B", ext: "MangaDex (EN)", chapters: []string{"Chapter 1.cbz", "Chapter 2.cbz"}},
		{title: "Series B", ext: "Other (EN)", chapters: []string{"Chapter 9.cbr"}},
	}

	for _, start := range []string{root, filepath.Join(root, "downloads")} {
		series, err := cbzconv.ScanLibrary(start)
		if err != nil {
			t.Fatalf("ScanLibrary(%s) error = %v", start, err)
		}
		got := summarize(series)
		if len(got) != len(want) {
			t.Fatalf("ScanLibrary(%s) = %+v, want %+v", start, got, want)
		}
		for i := range want {
			if got[i].title != want[i].title || got[i].ext != want[i].ext || !slices.Equal(got[i].chapters, want[i].chapters) {
				t.Errorf("series %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	}
}

func TestScanLibrary_ChaptersAreMergeable(t *testing.T) {
	t.Parallel()

	series, err := cbzconv.ScanLibrary(mihonLibrary(t))
	if err != nil {
		t.Fatal(err)
	}
	s, ok := cbzconv.FindSeries(series, "Series B")
	if !ok {
		t.Fatal("Series B not found")
	}
	for _, c := range s.Chapters {
		if c.Group != "Series B" {
			t.Errorf("chapter %s Group = %q, want Series B", c.Name, c.Group)
		}
	}
	if !cbzconv.CanMerge(s.Chapters) {
		t.Error("chapters of one series should be mergeable")
	}
}

func TestScanLibrary_NotFound(t *testing.T) {
	t.Parallel()

	_, err := cbzconv.ScanLibrary(t.TempDir())
	if !errors.Is(err, cbzconv.ErrLibraryNotFound) {
		t.Errorf("ScanLibrary() error = %v, want ErrLibraryNotFound", err)
	}
}

func TestFindSeries(t *testing.T) {
	t.Parallel()

	series := []cbzconv.Series{{Title: "Series A"}, {Title: "Series B", Extension: "first"}, {Title: "series b", Extension: "second"}}

	tests := []struct {
		title   string
		wantExt string
		wantOK  bool
	}{
		{title: "series b", wantExt: "first", wantOK: true},
		{title: "  Series A ", wantOK: true},
		{title: "Series C"},
	}
	for _, tt := range tests {
		got, ok := cbzconv.FindSeries(series, tt.title)
		if ok != tt.wantOK || got.Extension != tt.wantExt {
			t.Errorf("FindSeries(%q) = %+v, %v; want ext %q, %v", tt.title, got, ok, tt.wantExt, tt.wantOK)
		}
	}
}
