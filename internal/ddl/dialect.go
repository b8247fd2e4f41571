package ddl

import "strings"

// Dialect carries the per-backend pieces of DDL rendering.
type Dialect struct {
	// Name labels errors, e.g. "sqlite".
	Name string

	// Quote quotes one identifier segment.
	Quote func(ident string) string

	// Types maps logical kinds to SQL types. Missing kinds fall back to the
	// KindText entry.
	Types map[Kind]string

	// Create wraps the quoted table name and the rendered column list into a
	// statement that is a no-op when the table already exists.
	Create func(fqn, body string) string
}

// Enclose returns a Quote func that wraps identifiers in left/right and
// doubles any embedded right sequence.
func Enclose(left, right string) func(string) string {
	return func(id string) string {
		return left + strings.ReplaceAll(id, right, right+right) + right
	}
}

// QuoteFQN quotes each dotted segment of name. Empty segments are dropped.
func (d Dialect) QuoteFQN(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.Quote(p))
	}
	return strings.Join(out, ".")
}

// QuoteAll quotes every column name.
func (d Dialect) QuoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = d.Quote(c)
	}
	return out
}

// SQLType returns the SQL type for k.
func (d Dialect) SQLType(k Kind) string {
	if t, ok := d.Types[k]; ok {
		return t
	}
	return d.Types[KindText]
}

// Define builds a nullable TableDef for fields.
func (d Dialect) Define(fqn string, fields []Field) TableDef {
	cols := make([]ColumnDef, len(fields))
	for i, f := range fields {
		cols[i] = ColumnDef{Name: f.Name, SQLType: d.SQLType(f.Kind), Nullable: true}
	}
	return TableDef{FQN: fqn, Columns: cols}
}
