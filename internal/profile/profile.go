// Package profile summarizes raw source relations and renders console tables
// for the human-facing part of a run.
package profile

import (
	"referralreport/internal/table"
)

// Column is the null and cardinality profile of one column.
type Column struct {
	Name     string `json:"name"`
	Nulls    int    `json:"nulls"`
	Distinct int    `json:"distinct"`
}

// Source is the shape and column profile of one relation.
type Source struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []Column `json:"columns"`
}

// Nulls returns the total null count across all columns.
func (s Source) Nulls() int {
	n := 0
	for _, c := range s.Columns {
		n += c.Nulls
	}
	return n
}

// Of profiles t. Distinct counts compare the canonical text of non-null
// cells.
func Of(t *table.Table) Source {
	p := Source{Name: t.Name, Rows: t.Len(), Columns: make([]Column, len(t.Columns))}
	for i, name := range t.Columns {
		seen := make(map[string]struct{})
		c := Column{Name: name}
		for _, row := range t.Rows {
			s, ok := table.Text(row[i])
			if !ok {
				c.Nulls++
				continue
			}
			seen[s] = struct{}{}
		}
		c.Distinct = len(seen)
		p.Columns[i] = c
	}
	return p
}
