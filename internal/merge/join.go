// Package merge assembles the wide referral relation from the seven
// normalized source relations through a fixed sequence of left-outer joins.
package merge

import (
	"fmt"

	"referralreport/internal/bitmap"
	"referralreport/internal/table"
)

// KeyError reports a join key column that is missing from a non-empty
// relation.
type KeyError struct {
	Relation string
	Column   string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("join key %q missing from %s", e.Column, e.Relation)
}

// JoinSpec describes one left-outer join against an accumulated left side.
type JoinSpec struct {
	// Name labels the join in stats and errors, usually the right relation.
	Name     string
	Right    *table.Table
	LeftKey  string
	RightKey string

	// Suffix is appended to right-side columns whose names already exist on
	// the left.
	Suffix string
}

// JoinStats describes the cardinality of one join.
type JoinStats struct {
	Name      string
	Left      int
	Right     int
	Out       int
	Matched   int // left rows with at least one match
	Unmatched int // left rows kept with null right-side columns
	FanOut    int // extra rows produced by multi-row matches
}

// LeftJoin keeps every row of left, in order, followed by its matches in
// right order. Unmatched rows get nulls for every right-side column. Null
// keys never match.
//
// When LeftKey and RightKey share a name the right key column is dropped,
// since it would only repeat the left one. origin maps each output row to its
// left row position.
func LeftJoin(left *table.Table, spec JoinSpec) (out *table.Table, origin []int, stats JoinStats, err error) {
	right := spec.Right
	if right == nil {
		right = table.New(spec.Name, nil)
	}
	stats = JoinStats{Name: spec.Name, Left: left.Len(), Right: right.Len()}

	li := left.Index(spec.LeftKey)
	if li < 0 && left.Len() > 0 {
		return nil, nil, stats, &KeyError{Relation: left.Name, Column: spec.LeftKey}
	}
	ri := right.Index(spec.RightKey)
	if ri < 0 && right.Len() > 0 {
		return nil, nil, stats, &KeyError{Relation: spec.Name, Column: spec.RightKey}
	}

	dropKey := spec.LeftKey == spec.RightKey
	var rightCols []int
	cols := append([]string(nil), left.Columns...)
	taken := make(map[string]struct{}, len(cols)+len(right.Columns))
	for _, c := range cols {
		taken[c] = struct{}{}
	}
	for i, c := range right.Columns {
		if dropKey && i == ri {
			continue
		}
		name := c
		for {
			if _, dup := taken[name]; !dup {
				break
			}
			name += spec.Suffix
			if spec.Suffix == "" {
				name += "_right"
			}
		}
		taken[name] = struct{}{}
		cols = append(cols, name)
		rightCols = append(rightCols, i)
	}

	lookup := make(map[string][]int, right.Len())
	if ri >= 0 {
		for r, row := range right.Rows {
			if k, ok := joinKey(row[ri]); ok {
				lookup[k] = append(lookup[k], r)
			}
		}
	}

	out = table.New(left.Name, cols)
	out.Rows = make([][]table.Value, 0, left.Len())
	origin = make([]int, 0, left.Len())
	matched := bitmap.New()
	width := len(cols)

	for l, lrow := range left.Rows {
		var hits []int
		if li >= 0 {
			if k, ok := joinKey(lrow[li]); ok {
				hits = lookup[k]
			}
		}
		if len(hits) == 0 {
			row := make([]table.Value, width)
			copy(row, lrow)
			out.Rows = append(out.Rows, row)
			origin = append(origin, l)
			continue
		}
		matched.Add(l)
		for _, r := range hits {
			row := make([]table.Value, width)
			n := copy(row, lrow)
			for j, rc := range rightCols {
				row[n+j] = right.Rows[r][rc]
			}
			out.Rows = append(out.Rows, row)
			origin = append(origin, l)
		}
	}

	stats.Out = out.Len()
	stats.Matched = matched.Len()
	stats.Unmatched = stats.Left - stats.Matched
	stats.FanOut = stats.Out - stats.Left
	return out, origin, stats, nil
}

// joinKey returns the comparison text of a key cell. Keys are canonical text
// after normalization; other types are tolerated through table.CanonicalID.
func joinKey(v table.Value) (string, bool) {
	id := table.CanonicalID(v)
	if id == nil {
		return "", false
	}
	return id.(string), true
}
