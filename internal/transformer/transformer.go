// Package transformer defines table-to-table steps and ordered chains of them.
package transformer

import "referralreport/internal/table"

// Transformer turns one relation into a new relation. Implementations must
// not modify their input.
type Transformer interface {
	Apply(*table.Table) *table.Table
}

// Func adapts a plain function to Transformer.
type Func func(*table.Table) *table.Table

// Apply calls f.
func (f Func) Apply(t *table.Table) *table.Table { return f(t) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every step in order, feeding each the previous result.
func (c Chain) Apply(in *table.Table) *table.Table {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
