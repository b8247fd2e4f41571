// Package parser dispatches a source stream to the decoder named by its
// parser kind.
package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"referralreport/internal/config"
	"referralreport/internal/parser/csv"
	"referralreport/internal/table"
)

// Parse decodes r with the decoder for p.Kind. warn receives non-fatal
// findings and may be nil.
func Parse(ctx context.Context, name string, p config.Parser, r io.Reader, warn func(string)) (*table.Table, error) {
	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case "", "csv":
		opt := csv.OptionsFrom(p.Options)
		opt.OnWarning = warn
		return csv.ReadTable(ctx, name, r, opt)
	default:
		return nil, fmt.Errorf("unsupported parser kind %q for %s", p.Kind, name)
	}
}
