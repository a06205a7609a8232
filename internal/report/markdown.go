package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/discount-impact/internal/analysis"
)

// Meta describes the run a Markdown report belongs to.
type Meta struct {
	RunID       string
	Source      string
	Rows        int
	Kept        int
	MinPerGroup int
	Alpha       float64
	Warnings    []string
}

// Markdown renders rows (already rounded and ordered) as a standalone report.
func Markdown(meta Meta, rows []analysis.CategorySummary) string {
	var b strings.Builder
	b.WriteString("[DISCOUNT IMPACT SUMMARY]\n")
	if meta.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", meta.Source))
	}
	if meta.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", meta.RunID))
	}
	if meta.Kept < meta.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d (kept %d, dropped %d)\n", meta.Rows, meta.Kept, meta.Rows-meta.Kept))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", meta.Rows))
	}
	b.WriteString(fmt.Sprintf("Categories: %d\n", len(rows)))
	b.WriteString(fmt.Sprintf("Min per group: %d\n", meta.MinPerGroup))

	tested, significant := 0, 0
	for _, r := range rows {
		if r.PValue.Valid {
			tested++
			if meta.Alpha > 0 && r.PValue.Value < meta.Alpha {
				significant++
			}
		}
	}
	b.WriteString(fmt.Sprintf("Tested: %d", tested))
	if meta.Alpha > 0 {
		b.WriteString(fmt.Sprintf(" (p < %g: %d)", meta.Alpha, significant))
	}
	b.WriteString("\n")

	b.WriteString("\n[CATEGORIES BY % LIFT]\n")
	b.WriteString("| " + strings.Join(Header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(Header)) + "\n")
	for _, r := range rows {
		rec := Record(r)
		rec[0] = safeName(rec[0])
		for i := 1; i < len(rec); i++ {
			rec[i] = safeVal(rec[i])
		}
		b.WriteString("| " + strings.Join(rec, " | ") + " |\n")
	}

	if len(meta.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range meta.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = safeVal(strings.TrimSpace(s))
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
