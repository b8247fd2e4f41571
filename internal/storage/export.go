package storage

import (
	"context"
	"fmt"
	"time"

	"referralreport/internal/ddl"
	"referralreport/internal/table"
)

// Sink describes where and how the report is exported.
type Sink struct {
	Kind       string
	Table      string
	AutoCreate bool

	// Replace deletes existing rows before the load.
	Replace bool
}

// EnsureTable issues the backend's CREATE TABLE IF NOT EXISTS equivalent for
// fields.
func EnsureTable(ctx context.Context, repo Repository, kind, fqn string, fields []ddl.Field) error {
	d, err := Dialect(kind)
	if err != nil {
		return err
	}
	stmt, err := ddl.BuildCreateTableSQL(d.Define(fqn, fields), d)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", fqn, err)
	}
	return nil
}

// ClearTable deletes every row of fqn.
func ClearTable(ctx context.Context, repo Repository, kind, fqn string) error {
	d, err := Dialect(kind)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, "DELETE FROM "+d.QuoteFQN(fqn)); err != nil {
		return fmt.Errorf("clear table %s: %w", fqn, err)
	}
	return nil
}

// Export prepares the destination table and loads t through l. Cells are
// converted to driver values with Values.
func Export(ctx context.Context, repo Repository, s Sink, t *table.Table, fields []ddl.Field, l Loader) (int64, error) {
	if s.AutoCreate {
		if err := EnsureTable(ctx, repo, s.Kind, s.Table, fields); err != nil {
			return 0, err
		}
	}
	if s.Replace {
		if err := ClearTable(ctx, repo, s.Kind, s.Table); err != nil {
			return 0, err
		}
	}

	rows, err := Values(t, fields)
	if err != nil {
		return 0, err
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return l.Load(ctx, cols, Feed(ctx, rows), repo.CopyFrom)
}

// Values converts the cells of t into driver values for fields, in field
// order. Text fields take the canonical cell text; timestamp, float and bool
// fields take the typed value or NULL when the cell does not hold one.
func Values(t *table.Table, fields []ddl.Field) ([][]any, error) {
	pos := make([]int, len(fields))
	for i, f := range fields {
		pos[i] = t.Index(f.Name)
		if pos[i] < 0 {
			return nil, fmt.Errorf("export: column %q missing from %s", f.Name, t.Name)
		}
	}

	out := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		vals := make([]any, len(fields))
		for i, f := range fields {
			vals[i] = driverValue(row[pos[i]], f.Kind)
		}
		out[r] = vals
	}
	return out, nil
}

func driverValue(v table.Value, k ddl.Kind) any {
	if v == nil {
		return nil
	}
	switch k {
	case ddl.KindTimestamp:
		if ts, ok := v.(time.Time); ok {
			return ts.UTC()
		}
		return nil
	case ddl.KindFloat:
		if f, ok := table.Number(v); ok {
			return f
		}
		return nil
	case ddl.KindBool:
		switch x := v.(type) {
		case bool:
			return x
		case string:
			switch x {
			case "true":
				return true
			case "false":
				return false
			}
		}
		return nil
	}
	s, _ := table.Text(v)
	return s
}
