package builtin

import (
	"referralreport/internal/table"
	"referralreport/internal/transformer"
)

// Normalizer returns the normalization chain every source goes through:
// clean headers, trim text, parse timestamps, infer types, canonicalize
// identifiers.
func Normalizer() transformer.Chain {
	return transformer.Chain{
		TrimColumns{},
		TrimStrings{},
		Timestamps{},
		Coerce{},
		CanonicalIDs{},
	}
}

// Normalize applies Normalizer to t.
func Normalize(t *table.Table) *table.Table {
	return Normalizer().Apply(t)
}
