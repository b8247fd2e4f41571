package referral

import (
	"fmt"

	"referralreport/internal/table"
)

// Derived holds the computed fields of one merged row.
type Derived struct {
	Category Category
	Valid    bool
}

// Outcome is the result of deriving a whole merged table.
type Outcome struct {
	Rows []Derived

	Valid   int
	Invalid int

	// Recovered counts rows whose evaluation panicked and were marked invalid.
	Recovered int
}

// Derive classifies and evaluates every row of merged, in order. A row that
// cannot be evaluated is invalid; it never stops the run.
func Derive(merged *table.Table) Outcome {
	b := NewBinder(merged)
	out := Outcome{Rows: make([]Derived, merged.Len())}
	for i, row := range merged.Rows {
		d, err := deriveRow(b, row)
		if err != nil {
			out.Recovered++
		}
		out.Rows[i] = d
		if d.Valid {
			out.Valid++
		} else {
			out.Invalid++
		}
	}
	return out
}

func deriveRow(b *Binder, row []table.Value) (d Derived, err error) {
	d.Category = Other
	defer func() {
		if r := recover(); r != nil {
			d.Valid = false
			err = fmt.Errorf("evaluate row: %v", r)
		}
	}()
	rec := b.Bind(row)
	d.Category = Classify(rec.ReferralSource)
	d.Valid = Evaluate(rec)
	return d, nil
}
