package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/KaramelBytes/discount-impact/internal/analysis"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Preview prints the first n rows as a bordered table. Missing values show as "n/a".
func Preview(w io.Writer, rows []analysis.CategorySummary, n int) error {
	if n <= 0 {
		return nil
	}
	if len(rows) < n {
		n = len(rows)
	}
	records := make([][]string, 0, n)
	for _, r := range rows[:n] {
		rec := Record(r)
		for i := 3; i < len(rec); i++ {
			if rec[i] == "" {
				rec[i] = "n/a"
			}
		}
		records = append(records, rec)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(Header...).
		Rows(records...)

	if _, err := fmt.Fprintln(w, titleStyle.Render("=== Category x Discount Impact (Top by % Lift) ===")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}
