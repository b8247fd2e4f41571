package profile

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"referralreport/internal/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numStyle    = cellStyle.Align(lipgloss.Right)
)

func newTable(headers []string, numeric func(col int) bool) *ltable.Table {
	return ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return headerStyle
			case numeric != nil && numeric(col):
				return numStyle
			default:
				return cellStyle
			}
		})
}

// Render writes one table per source: its shape followed by per-column null
// and distinct counts.
func Render(w io.Writer, sources []Source) error {
	for _, s := range sources {
		title := fmt.Sprintf("%s: %s rows x %d columns", s.Name, humanize.Comma(int64(s.Rows)), len(s.Columns))
		t := newTable([]string{"column", "nulls", "distinct"}, func(col int) bool { return col > 0 })
		for _, c := range s.Columns {
			t.Row(c.Name, humanize.Comma(int64(c.Nulls)), humanize.Comma(int64(c.Distinct)))
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", titleStyle.Render(title), t.Render()); err != nil {
			return err
		}
	}
	return nil
}

// RenderSample writes the first n rows of t. n <= 0 writes nothing.
func RenderSample(w io.Writer, t *table.Table, n int) error {
	if n <= 0 {
		return nil
	}
	if n > t.Len() {
		n = t.Len()
	}
	lt := newTable(append([]string{"#"}, t.Columns...), func(col int) bool { return col == 0 })
	for i := 0; i < n; i++ {
		cells := make([]string, 0, len(t.Columns)+1)
		cells = append(cells, strconv.Itoa(i))
		for _, v := range t.Rows[i] {
			cells = append(cells, table.Format(v))
		}
		lt.Row(cells...)
	}
	title := fmt.Sprintf("sample: first %d of %s rows", n, humanize.Comma(int64(t.Len())))
	_, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(title), lt.Render())
	return err
}

// RenderTotals writes the closing summary lines of a run.
func RenderTotals(w io.Writer, total, valid, invalid int) error {
	_, err := fmt.Fprintf(w, "%s\ntotal records: %s\nvalid rows:    %s\ninvalid rows:  %s\n",
		titleStyle.Render("summary"),
		humanize.Comma(int64(total)), humanize.Comma(int64(valid)), humanize.Comma(int64(invalid)))
	return err
}
