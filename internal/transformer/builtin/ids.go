package builtin

import "referralreport/internal/table"

// CanonicalIDs rewrites every identifier column (see IsIdentifier) to the
// canonical text form from table.CanonicalID, so 42, 42.0 and " 42" all join
// as "42".
type CanonicalIDs struct{}

// Apply implements transformer.Transformer.
func (CanonicalIDs) Apply(in *table.Table) *table.Table {
	var cols []int
	for i, c := range in.Columns {
		if IsIdentifier(c) {
			cols = append(cols, i)
		}
	}
	if len(cols) == 0 {
		return in
	}
	out := in.Clone()
	for _, row := range out.Rows {
		for _, i := range cols {
			row[i] = table.CanonicalID(row[i])
		}
	}
	return out
}
