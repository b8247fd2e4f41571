package builtin

import (
	"strings"
	"time"

	"referralreport/internal/table"
)

// DefaultLayouts are tried in order when parsing temporal cells. Layouts
// without a zone are read as UTC.
var DefaultLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999 Z07:00",
	"2006-01-02 15:04:05.999999999 Z0700",
	"2006-01-02 15:04:05.999999999 MST",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Timestamps parses every temporal column (see IsTemporal) into UTC
// time.Time values. Cells that match no layout become null.
type Timestamps struct {
	// Layouts overrides DefaultLayouts when non-empty.
	Layouts []string
}

// Apply implements transformer.Transformer.
func (ts Timestamps) Apply(in *table.Table) *table.Table {
	layouts := ts.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}

	var cols []int
	for i, c := range in.Columns {
		if IsTemporal(c) {
			cols = append(cols, i)
		}
	}
	if len(cols) == 0 {
		return in
	}

	out := in.Clone()
	for _, row := range out.Rows {
		for _, i := range cols {
			row[i] = parseTime(row[i], layouts)
		}
	}
	return out
}

func parseTime(v table.Value, layouts []string) table.Value {
	switch x := v.(type) {
	case time.Time:
		return x.UTC()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	return nil
}
