package cbzconv_test

import (
	"errors"
	"testing"

	"github.com/alnah/go-cbzconv"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    cbzconv.Format
		wantErr error
	}{
		{in: "", want: cbzconv.FormatPDF},
		{in: "pdf", want: cbzconv.FormatPDF},
		{in: " EPUB ", want: cbzconv.FormatEPUB},
		{in: "mobi", wantErr: cbzconv.ErrInvalidFormat},
	}

	for _, tt := range tests {
		got, err := cbzconv.ParseFormat(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseFormat(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat_Ext(t *testing.T) {
	t.Parallel()

	if got := cbzconv.FormatPDF.Ext(); got != ".pdf" {
		t.Errorf("FormatPDF.Ext() = %q", got)
	}
	if got := cbzconv.FormatEPUB.Ext(); got != ".epub" {
		t.Errorf("FormatEPUB.Ext() = %q", got)
	}
}

func TestParseSortMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    cbzconv.SortMode
		wantErr error
	}{
		{in: "", want: cbzconv.SortByName},
		{in: "Name", want: cbzconv.SortByName},
		{in: "archive", want: cbzconv.SortArchive},
		{in: "date", wantErr: cbzconv.ErrInvalidSortMode},
	}

	for _, tt := range tests {
		got, err := cbzconv.ParseSortMode(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseSortMode(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSortMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResult_Pages(t *testing.T) {
	t.Parallel()

	res := &cbzconv.Result{Artifacts: []cbzconv.Artifact{{Pages: 100}, {Pages: 50}}}
	if got := res.Pages(); got != 150 {
		t.Errorf("Pages() = %d, want 150", got)
	}
	if got := (&cbzconv.Result{}).Pages(); got != 0 {
		t.Errorf("empty Pages() = %d, want 0", got)
	}
}
