package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alnah/go-cbzconv"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable renders rows under headers with a rounded border.
// An optional footer row is rendered below the body.
func renderTable(headers []string, rows [][]string, footer []string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	tw.AppendHeader(toRow(headers, columns))
	for _, row := range rows {
		tw.AppendRow(toRow(row, columns))
	}
	if len(footer) > 0 {
		tw.AppendFooter(toRow(footer, columns))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignFooter: align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func toRow(cells []string, columns int) table.Row {
	r := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

// printResults prints the written files and a one-line summary.
func printResults(w io.Writer, res *cbzconv.Result, elapsed time.Duration) {
	if len(res.Artifacts) > 0 {
		rows := make([][]string, 0, len(res.Artifacts))
		var size int64
		for _, a := range res.Artifacts {
			size += a.Bytes
			rows = append(rows, []string{
				a.Name,
				strconv.Itoa(a.Pages),
				strconv.Itoa(a.Skipped),
				humanize.IBytes(uint64(a.Bytes)), // #nosec G115 -- sizes are never negative
			})
		}
		footer := []string{
			"Total",
			strconv.Itoa(res.Pages()),
			strconv.Itoa(res.SkippedPages),
			humanize.IBytes(uint64(size)), // #nosec G115 -- sizes are never negative
		}
		fmt.Fprintln(w, renderTable(
			[]string{"File", "Pages", "Skipped", "Size"},
			rows, footer,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
		))
	}

	fmt.Fprintf(w, "%d file(s) written from %d source(s) in %s",
		len(res.Artifacts), res.SourcesAttempted, elapsed.Round(time.Millisecond))
	if n := len(res.Errors); n > 0 {
		fmt.Fprintf(w, ", %d problem(s)", n)
	}
	fmt.Fprintln(w)
}
