package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the textual form of timestamps in reports. Values are
// always rendered in UTC.
const TimestampLayout = "2006-01-02 15:04:05.999999-07:00"

// IsNull reports whether v is a null cell.
func IsNull(v Value) bool { return v == nil }

// Text returns the canonical textual form of v. ok is false for nulls.
//
// Integral floats render without a fractional part, so 5, 5.0 and "5" share
// the same text.
func Text(v Value) (s string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int:
		return strconv.Itoa(x), true
	case float64:
		return formatFloat(x), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.UTC().Format(TimestampLayout), true
	default:
		return fmt.Sprint(x), true
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Number converts v to a float64. Strings are parsed after trimming; bools map
// to 1 and 0. ok is false for nulls, NaN and anything unparseable.
func Number(v Value) (f float64, ok bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Time returns v as a UTC time when it holds one.
func Time(v Value) (time.Time, bool) {
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// CanonicalID returns the comparison form of an identifier cell: its text,
// trimmed, with an all-zero fraction dropped so "42.0" and "42" agree. Text is
// never routed through float64, so long and zero-padded ids keep their digits.
// Nulls and blank strings become nil and never match anything.
func CanonicalID(v Value) Value {
	s, ok := Text(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return trimZeroFraction(s)
}

// trimZeroFraction turns "[sign]digits.000" into "[sign]digits"; anything else
// is returned unchanged.
func trimZeroFraction(s string) string {
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return s
	}
	whole, frac := s[:dot], s[dot+1:]
	digits := strings.TrimLeft(whole, "+-")
	if len(whole)-len(digits) > 1 || digits == "" || strings.Trim(digits, "0123456789") != "" {
		return s
	}
	if strings.Trim(frac, "0") != "" {
		return s
	}
	return whole
}

// Format renders v for delimited-text output. Nulls become the empty string.
func Format(v Value) string {
	s, _ := Text(v)
	return s
}
