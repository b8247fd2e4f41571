package builtin

import (
	"strings"

	"referralreport/internal/table"
)

// TrimStrings trims Unicode white space (NBSP included) from every text cell. A
// cell that is blank after trimming becomes null.
type TrimStrings struct{}

// Apply implements transformer.Transformer.
func (TrimStrings) Apply(in *table.Table) *table.Table {
	out := in.Clone()
	for _, row := range out.Rows {
		for i, v := range row {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				row[i] = nil
				continue
			}
			row[i] = s
		}
	}
	return out
}
