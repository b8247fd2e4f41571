// Package builtin contains the normalization steps applied to every source
// relation before it is merged.
package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"referralreport/internal/table"
)

// TrimColumns strips surrounding white space from column names and puts them
// in Unicode NFC so visually identical headers compare equal.
type TrimColumns struct{}

// Apply implements transformer.Transformer.
func (TrimColumns) Apply(in *table.Table) *table.Table {
	cols := make([]string, len(in.Columns))
	for i, c := range in.Columns {
		cols[i] = norm.NFC.String(strings.TrimSpace(c))
	}
	out := table.New(in.Name, cols)
	out.Rows = in.Rows
	return out
}

// IsTemporal reports whether a column holds timestamps: one of its
// underscore-separated tokens is "at", ends in a camelCase "At" (createdAt),
// or contains "date" or "time".
//
// Tokens are used instead of raw substrings because "at" occurs inside
// transaction_status and user_referral_status_id.
func IsTemporal(col string) bool {
	for _, tok := range strings.Split(col, "_") {
		if camelAt(tok) {
			return true
		}
		tok = strings.ToLower(tok)
		if tok == "at" || strings.Contains(tok, "date") || strings.Contains(tok, "time") {
			return true
		}
	}
	return false
}

// camelAt reports whether tok is a lower-case word followed by "At".
func camelAt(tok string) bool {
	n := len(tok)
	if n < 3 || !strings.HasSuffix(tok, "At") {
		return false
	}
	prev := tok[n-3]
	return prev >= 'a' && prev <= 'z'
}

// IsIdentifier reports whether a column holds identifiers: its name contains
// "id" and it is not temporal.
func IsIdentifier(col string) bool {
	return strings.Contains(strings.ToLower(col), "id") && !IsTemporal(col)
}
