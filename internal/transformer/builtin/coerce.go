package builtin

import (
	"math"
	"strconv"
	"strings"

	"referralreport/internal/table"
)

// Coerce infers a type per column from its text cells and converts the whole
// column when every non-null cell agrees. Candidates are tried in the order
// int, bool, float; a column with any other value stays text. Temporal and
// identifier columns are left alone; identifiers stay text so zero padding and
// digits beyond int64 survive.
type Coerce struct{}

type kind int

const (
	kindText kind = iota
	kindInt
	kindBool
	kindFloat
)

// Apply implements transformer.Transformer.
func (Coerce) Apply(in *table.Table) *table.Table {
	kinds := make([]kind, len(in.Columns))
	changed := false
	for i, c := range in.Columns {
		if IsTemporal(c) || IsIdentifier(c) {
			continue
		}
		kinds[i] = inferColumn(in.Rows, i)
		changed = changed || kinds[i] != kindText
	}
	if !changed {
		return in
	}

	out := in.Clone()
	for _, row := range out.Rows {
		for i, k := range kinds {
			s, ok := row[i].(string)
			if !ok || k == kindText {
				continue
			}
			switch k {
			case kindInt:
				n, _ := strconv.ParseInt(s, 10, 64)
				row[i] = n
			case kindBool:
				b, _ := parseBool(s)
				row[i] = b
			case kindFloat:
				f, _ := parseFloat(s)
				row[i] = f
			}
		}
	}
	return out
}

// inferColumn picks the narrowest kind every non-null text cell satisfies.
// A column with no text cells stays text.
func inferColumn(rows [][]table.Value, col int) kind {
	isInt, isBool, isFloat := true, true, true
	seen := false
	for _, row := range rows {
		s, ok := row[col].(string)
		if !ok {
			if row[col] != nil {
				return kindText
			}
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isBool {
			if _, ok := parseBool(s); !ok {
				isBool = false
			}
		}
		if isFloat {
			if _, ok := parseFloat(s); !ok {
				isFloat = false
			}
		}
		if !isInt && !isBool && !isFloat {
			return kindText
		}
	}
	switch {
	case !seen:
		return kindText
	case isInt:
		return kindInt
	case isBool:
		return kindBool
	case isFloat:
		return kindFloat
	}
	return kindText
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// parseFloat accepts finite decimal numbers only; "NaN" and "Inf" stay text.
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
