// Package csv decodes one delimited-text relation into a table.Table.
//
// The header row names the columns. Cells are kept as text; an empty cell
// becomes nil. Rows wider or narrower than the header are truncated or padded
// with nil and reported through Options.OnWarning. A malformed quote or any
// other decoding error aborts the read.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"referralreport/internal/config"
	"referralreport/internal/table"
)

// Options configures the reader. The zero value reads RFC 4180 with ','.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// LazyQuotes tolerates bare quotes inside unquoted fields.
	LazyQuotes bool

	// TrimLeadingSpace ignores leading white space in a field.
	TrimLeadingSpace bool

	// HeaderMap renames source headers, keyed by the raw header text.
	HeaderMap map[string]string

	// OnWarning receives non-fatal findings such as ragged rows.
	OnWarning func(msg string)
}

// OptionsFrom maps free-form parser options from the pipeline config.
func OptionsFrom(o config.Options) Options {
	hm := o.StringMap("header_map")
	if len(hm) == 0 {
		hm = nil
	}
	return Options{
		Comma:            o.Rune("comma", ','),
		LazyQuotes:       o.Bool("lazy_quotes", false),
		TrimLeadingSpace: o.Bool("trim_leading_space", false),
		HeaderMap:        hm,
	}
}

// maxRaggedWarnings caps per-row warnings; the total is reported once at the
// end.
const maxRaggedWarnings = 20

// ReadTable decodes r into a table called name. A UTF-8 or UTF-16 byte order
// mark is honoured and removed. An empty input yields a table with no
// columns and no rows.
func ReadTable(ctx context.Context, name string, r io.Reader, opt Options) (*table.Table, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	cr := csv.NewReader(transform.NewReader(r, dec))
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	cr.TrimLeadingSpace = opt.TrimLeadingSpace
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.New(name, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", name, err)
	}
	t := table.New(name, headerNames(header, opt.HeaderMap))
	width := len(t.Columns)

	ragged := 0
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if len(rec) != width {
			ragged++
			if ragged <= maxRaggedWarnings && opt.OnWarning != nil {
				opt.OnWarning(fmt.Sprintf("%s line %d: %d fields, header has %d; row adjusted", name, line, len(rec), width))
			}
		}

		row := make([]table.Value, width)
		for i := 0; i < width && i < len(rec); i++ {
			if rec[i] != "" {
				row[i] = strings.Clone(rec[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if ragged > maxRaggedWarnings && opt.OnWarning != nil {
		opt.OnWarning(fmt.Sprintf("%s: %d ragged rows in total", name, ragged))
	}
	return t, nil
}

func headerNames(h []string, headerMap map[string]string) []string {
	out := make([]string, len(h))
	for i, c := range h {
		if m, ok := headerMap[c]; ok {
			out[i] = m
			continue
		}
		if m, ok := headerMap[strings.TrimSpace(c)]; ok {
			out[i] = m
			continue
		}
		out[i] = strings.Clone(c)
	}
	return out
}
