package cbzconv_test

import (
	"slices"
	"testing"

	"github.com/alnah/go-cbzconv"
)

func TestIsPlaceholderName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"document.cbz", true},
		{"Document (2).cbz", true},
		{"download-3", true},
		{"file_12", true},
		{"Untitled", true},
		{"unknown", true},
		{"item 4.zip", true},
		{"Series A", false},
		{"Chapter 12.cbz", false},
		{"documentary.cbz", false},
		{"007", false},
	}

	for _, tt := range tests {
		if got := cbzconv.IsPlaceholderName(tt.name); got != tt.want {
			t.Errorf("IsPlaceholderName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCleanDisplayName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Chapter 12.cbz":                                      "Chapter 12.cbz",
		"/storage/emulated/0/Mihon/Series A/Ch 1.cbz":         "Ch 1.cbz",
		"primary:Mihon%2Fdownloads%2FSeries%20B%2FCh%202.cbz": "Ch 2.cbz",
		"content://x/y/Ch%203.cbz?mode=r#frag":                "Ch 3.cbz",
		`  "Quoted Name.cbz"  `:                               "Quoted Name.cbz",
		"C:\\comics\\Series C\\Ch 4.cbz":                      "Ch 4.cbz",
		"nul\x00byte.cbz":                                     "nul byte.cbz",
		"100%.cbz":                                            "100%.cbz",
	}

	for in, want := range tests {
		if got := cbzconv.CleanDisplayName(in); got != want {
			t.Errorf("CleanDisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChapterNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"Chapter 12.cbz", "12", true},
		{"Vol 2 Ch 12.5.cbz", "12.5", true},
		{"Ch 7,5.cbz", "7,5", true},
		{"Series 3 - Chapter 101", "101", true},
		{"Ch 12.5.6.cbz", "5.6", true},
		{"Ch 1,2,3.cbz", "2,3", true},
		{"Vol 3 Ch 40 (v2).cbz", "2", true},
		{"Prologue.cbz", "", false},
	}

	for _, tt := range tests {
		got, ok := cbzconv.ChapterNumber(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ChapterNumber(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCanMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sources []cbzconv.Source
		want    bool
	}{
		{name: "single source", sources: []cbzconv.Source{{Name: "a.cbz"}}, want: true},
		{name: "same group", sources: []cbzconv.Source{
			{Name: "a.cbz", Group: "Series A", Parent: "/x"},
			{Name: "b.cbz", Group: "Series A", Parent: "/y"},
		}, want: true},
		{name: "different groups", sources: []cbzconv.Source{
			{Name: "a.cbz", Group: "Series A"},
			{Name: "b.cbz", Group: "Series B"},
		}, want: false},
		{name: "same parent without group", sources: []cbzconv.Source{
			{Name: "a.cbz", Parent: "/lib/Series A"},
			{Name: "b.cbz", Parent: "/lib/Series A/"},
		}, want: true},
		{name: "different parents", sources: []cbzconv.Source{
			{Name: "a.cbz", Parent: "/lib/Series A"},
			{Name: "b.cbz", Parent: "/lib/Series B"},
		}, want: false},
		{name: "nothing known", sources: []cbzconv.Source{
			{Name: "a.cbz"},
			{Name: "b.cbz"},
		}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cbzconv.CanMerge(tt.sources); got != tt.want {
				t.Errorf("CanMerge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNamingContext_GroupName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  cbzconv.Source
		want string
	}{
		{name: "group wins", src: cbzconv.Source{Name: "Ch 1.cbz", Group: "Series A", Parent: "/lib/Other"}, want: "Series A"},
		{name: "parent folder", src: cbzconv.Source{Name: "Ch 1.cbz", Parent: "/lib/Series B"}, want: "Series B"},
		{name: "placeholder parent falls back to file", src: cbzconv.Source{Name: "Series C v1.cbz", Parent: "/tmp/Download"}, want: "Series C v1"},
		{name: "all placeholders", src: cbzconv.Source{Name: "document (1).cbz", Group: "untitled", Parent: "/x/file"}, want: cbzconv.UnknownName},
		{name: "nothing at all", src: cbzconv.Source{}, want: cbzconv.UnknownName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nc := cbzconv.NewNamingContext()
			if got := nc.GroupName(tt.src); got != tt.want {
				t.Errorf("GroupName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNamingContext_CachesBySourceID(t *testing.T) {
	t.Parallel()

	nc := cbzconv.NewNamingContext()
	first := cbzconv.Source{ID: "id-1", Name: "Ch 1.cbz", Group: "Series A"}
	if got := nc.GroupName(first); got != "Series A" {
		t.Fatalf("GroupName() = %q, want %q", got, "Series A")
	}

	// Same identity, different hints: the cached name is kept.
	again := cbzconv.Source{ID: "id-1", Name: "Ch 1.cbz", Group: "Series Z"}
	if got := nc.GroupName(again); got != "Series A" {
		t.Errorf("GroupName() = %q, want cached %q", got, "Series A")
	}

	// A fresh context starts empty.
	if got := cbzconv.NewNamingContext().GroupName(again); got != "Series Z" {
		t.Errorf("new context GroupName() = %q, want %q", got, "Series Z")
	}
}

func TestNamingContext_SourceBaseName(t *testing.T) {
	t.Parallel()

	series := []cbzconv.Source{
		{ID: "1", Name: "Chapter 12.cbz", Group: "Series A"},
		{ID: "2", Name: "Extra.cbz", Group: "Series A"},
	}

	tests := []struct {
		name     string
		sources  []cbzconv.Source
		chapters bool
		custom   string
		want     []string
	}{
		{name: "single source", sources: series[:1], want: []string{"Series A"}},
		{name: "index suffix", sources: series, want: []string{"Series A_1", "Series A_2"}},
		{name: "chapter suffix with index fallback", sources: series, chapters: true, want: []string{"Series A_12", "Series A_2"}},
		{name: "single source chapter", sources: series[:1], chapters: true, want: []string{"Series A_12"}},
		{name: "custom single", sources: series[:1], custom: "Mine", want: []string{"Mine"}},
		{name: "custom several", sources: series, chapters: true, custom: "Mine", want: []string{"Mine_1", "Mine_2"}},
		{
			name: "ungrouped sources keep their parent name",
			sources: []cbzconv.Source{
				{ID: "1", Name: "a.cbz", Parent: "/comics/ParentOne"},
				{ID: "2", Name: "b.cbz", Parent: "/comics/ParentTwo"},
			},
			want: []string{"ParentOne", "ParentTwo"},
		},
		{
			name: "ungrouped sources sharing a parent are not indexed",
			sources: []cbzconv.Source{
				{ID: "1", Name: "a.cbz", Parent: "/comics/Parent"},
				{ID: "2", Name: "b.cbz", Parent: "/comics/Parent"},
			},
			want: []string{"Parent", "Parent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nc := cbzconv.NewNamingContext()
			var got []string
			for i := range tt.sources {
				got = append(got, nc.SourceBaseName(tt.sources, i, tt.chapters, tt.custom))
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("SourceBaseName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNamingContext_MergedBaseName(t *testing.T) {
	t.Parallel()

	mk := func(names ...string) []cbzconv.Source {
		sources := make([]cbzconv.Source, len(names))
		for i, n := range names {
			sources[i] = cbzconv.Source{ID: n, Name: n, Group: "Series A"}
		}
		return sources
	}

	tests := []struct {
		name     string
		sources  []cbzconv.Source
		chapters bool
		custom   string
		want     string
	}{
		{name: "chapter range", sources: mk("Ch 13.cbz", "Ch 12.cbz", "Ch 14.cbz"), chapters: true, want: "Series A_12-14"},
		{name: "numeric not lexical", sources: mk("Ch 9.cbz", "Ch 10.cbz"), chapters: true, want: "Series A_9-10"},
		{name: "decimal chapters", sources: mk("Ch 7,5.cbz", "Ch 7.cbz"), chapters: true, want: "Series A_7-7,5"},
		{name: "single chapter", sources: mk("Ch 3.cbz", "Ch 3.cbz"), chapters: true, want: "Series A_3"},
		{name: "no chapters found", sources: mk("Prologue.cbz", "Epilogue.cbz"), chapters: true, want: "Series A"},
		{name: "chapters off", sources: mk("Ch 1.cbz", "Ch 2.cbz"), want: "Series A"},
		{name: "custom wins", sources: mk("Ch 1.cbz", "Ch 2.cbz"), chapters: true, custom: "Omnibus", want: "Omnibus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nc := cbzconv.NewNamingContext()
			if got := nc.MergedBaseName(tt.sources, tt.chapters, tt.custom); got != tt.want {
				t.Errorf("MergedBaseName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPartName(t *testing.T) {
	t.Parallel()

	if got := cbzconv.PartName("Series A", 1, 1, cbzconv.FormatPDF); got != "Series A.pdf" {
		t.Errorf("PartName() single = %q", got)
	}
	if got := cbzconv.PartName("Series A", 2, 3, cbzconv.FormatEPUB); got != "Series A_part-2.epub" {
		t.Errorf("PartName() multi = %q", got)
	}
}

func TestResolveConflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate string
		existing  []string
		want      string
	}{
		{name: "free", candidate: "Series A.pdf", existing: []string{"Other.pdf"}, want: "Series A.pdf"},
		{name: "taken once", candidate: "Series A.pdf", existing: []string{"Series A.pdf"}, want: "Series A 1.pdf"},
		{name: "taken twice", candidate: "Series A.pdf", existing: []string{"Series A.pdf", "Series A 1.pdf"}, want: "Series A 2.pdf"},
		{name: "gap is reused", candidate: "Series A.pdf", existing: []string{"Series A.pdf", "Series A 2.pdf"}, want: "Series A 1.pdf"},
		{name: "no extension", candidate: "notes", existing: []string{"notes"}, want: "notes 1"},
		{name: "dotted stem", candidate: "Series A_12.5.pdf", existing: []string{"Series A_12.5.pdf"}, want: "Series A_12.5 1.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := cbzconv.ResolveConflict(tt.candidate, tt.existing)
			if got != tt.want {
				t.Errorf("ResolveConflict(%q) = %q, want %q", tt.candidate, got, tt.want)
			}
			if again := cbzconv.ResolveConflict(tt.candidate, tt.existing); again != got {
				t.Errorf("ResolveConflict() not deterministic: %q then %q", got, again)
			}
		})
	}
}

func TestResolveConflicts(t *testing.T) {
	t.Parallel()

	got := cbzconv.ResolveConflicts(
		[]string{"Series A.pdf", "Series A.pdf", "Series B.pdf"},
		[]string{"Series A.pdf"},
	)
	want := []string{"Series A 1.pdf", "Series A 2.pdf", "Series B.pdf"}
	if !slices.Equal(got, want) {
		t.Errorf("ResolveConflicts() = %v, want %v", got, want)
	}
}
