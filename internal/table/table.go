// Package table defines the in-memory relation model shared by every stage of
// the referral report: an ordered list of column names and rows of
// dynamically-typed cells.
//
// A cell holds one of: nil (null/missing), string, int64, float64, bool or
// time.Time. Stages never mutate a Table they received; they build a new one.
package table

import "fmt"

// Value is a single cell. See the package doc for the allowed dynamic types.
type Value = any

// Table is a named relation. Rows are positional and aligned to Columns.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Value

	index map[string]int
}

// New returns an empty table with the given columns. Duplicate column names
// resolve to their first occurrence in lookups.
func New(name string, columns []string) *Table {
	cols := append([]string(nil), columns...)
	t := &Table{Name: name, Columns: cols}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of col, or -1 when the column does not exist.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}
	if t.index == nil {
		t.reindex()
	}
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// Has reports whether col exists.
func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Append adds a row. The row must have exactly len(Columns) cells.
func (t *Table) Append(row []Value) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table %s: row width %d != columns %d", t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Get returns the cell at (row, col) or nil when the column is missing.
func (t *Table) Get(row int, col string) Value {
	i := t.Index(col)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row][i]
}

// Column returns a copy of all cells of col, or nil when it is missing.
func (t *Table) Column(col string) []Value {
	i := t.Index(col)
	if i < 0 {
		return nil
	}
	out := make([]Value, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Clone returns a copy whose row slices can be modified without affecting t.
// Cell values themselves are immutable and shared.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]Value(nil), row...)
	}
	return out
}
