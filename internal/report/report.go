// Package report projects the merged relation into the fixed report layout
// and writes it out.
package report

import (
	"fmt"

	"referralreport/internal/referral"
	"referralreport/internal/table"
)

// Report column names, in output order.
const (
	ColReferralCategory = "referral_source_category"
	ColValid            = "is_business_logic_valid"
)

// Columns is the exact report layout.
var Columns = []string{
	"referral_id",
	"referrer_id",
	"referee_id",
	"referral_source",
	ColReferralCategory,
	"referral_at",
	"transaction_id",
	"transaction_status",
	"transaction_type",
	"reward_value",
	"description",
	"is_reward_granted",
	ColValid,
}

// Summary counts the projected rows.
type Summary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// Project selects the report columns from merged, in merge order, adding the
// derived category and validity flag. Columns absent from merged are null.
func Project(merged *table.Table, derived referral.Outcome) (*table.Table, Summary, error) {
	if len(derived.Rows) != merged.Len() {
		return nil, Summary{}, fmt.Errorf("project: %d derived rows for %d merged rows", len(derived.Rows), merged.Len())
	}

	src := make([]int, len(Columns))
	for i, c := range Columns {
		src[i] = merged.Index(c)
	}
	catPos, validPos := indexOf(ColReferralCategory), indexOf(ColValid)

	out := table.New("report", Columns)
	out.Rows = make([][]table.Value, merged.Len())
	var sum Summary
	for r, row := range merged.Rows {
		d := derived.Rows[r]
		rec := make([]table.Value, len(Columns))
		for i, j := range src {
			if j >= 0 {
				rec[i] = row[j]
			}
		}
		rec[catPos] = string(d.Category)
		rec[validPos] = d.Valid
		out.Rows[r] = rec

		sum.Total++
		if d.Valid {
			sum.Valid++
		}
	}
	sum.Invalid = sum.Total - sum.Valid
	return out, sum, nil
}

func indexOf(col string) int {
	for i, c := range Columns {
		if c == col {
			return i
		}
	}
	return -1
}
