package main

import (
	"io"
	"os"
	"strconv"

	"wallsort/internal/journal"
	"wallsort/internal/wallsort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, rounded bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if rounded {
		tw.SetStyle(table.StyleRounded)
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func renderSummary(s *wallsort.Summary, rounded bool) string {
	rows := [][]string{
		{"moved", strconv.Itoa(s.Moved)},
		{"matched (dry run)", strconv.Itoa(s.Matched)},
		{"kept", strconv.Itoa(s.Processed)},
		{"skipped", strconv.Itoa(s.Skipped)},
		{"failed", strconv.Itoa(s.Failed)},
		{"ignored", strconv.Itoa(s.Ignored)},
	}
	return renderTable([]string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight}, rounded)
}

func renderRuns(runs []*journal.RunRecord, rounded bool) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		mode := ""
		if r.DryRun {
			mode = "dry run"
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			runDuration(r),
			formatRatio(r.RatioThreshold),
			strconv.Itoa(r.Moved + r.Matched),
			strconv.Itoa(r.Skipped + r.Failed),
			mode,
			r.SourceDir,
		})
	}
	headers := []string{"Run", "Started", "Status", "Duration", "Ratio", "Moved", "Problems", "Mode", "Source"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft}
	return renderTable(headers, rows, aligns, rounded)
}

func renderOutcomes(outcomes []*journal.OutcomeRecord, rounded bool) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		size, ratio := "", ""
		if o.Width > 0 && o.Height > 0 {
			size = strconv.Itoa(o.Width) + "x" + strconv.Itoa(o.Height)
			ratio = strconv.FormatFloat(o.Ratio, 'f', 3, 64)
		}
		detail := o.Destination
		if o.Error != "" {
			detail = o.Reason + ": " + o.Error
		}
		rows = append(rows, []string{o.Kind, o.Path, size, ratio, detail})
	}
	headers := []string{"Outcome", "Path", "Size", "Ratio", "Detail"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns, rounded)
}
