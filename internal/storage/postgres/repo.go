// Package postgres implements a Postgres repository on pgx v5. Batches are
// loaded with the COPY protocol through a connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"referralreport/internal/ddl"
	"referralreport/internal/storage"
)

// Dialect renders Postgres DDL.
var Dialect = ddl.Dialect{
	Name:  "postgres",
	Quote: ddl.Enclose(`"`, `"`),
	Types: map[ddl.Kind]string{
		ddl.KindText:      "TEXT",
		ddl.KindTimestamp: "TIMESTAMPTZ",
		ddl.KindFloat:     "DOUBLE PRECISION",
		ddl.KindBool:      "BOOLEAN",
	},
	Create: ddl.IfNotExists,
}

// pool is the subset of *pgxpool.Pool the repository uses.
type pool interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool  pool
	table pgx.Identifier
}

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return Open(ctx, cfg.DSN, cfg.Table)
	})
	storage.RegisterDDL("postgres", Dialect)
}

// Open creates a pool for dsn and pings it.
func Open(ctx context.Context, dsn, table string) (*Repository, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Repository{pool: p, table: Identifier(table)}, nil
}

// Identifier splits a possibly schema-qualified name into a pgx.Identifier.
func Identifier(name string) pgx.Identifier {
	parts := strings.Split(name, ".")
	out := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CopyFrom streams rows with COPY ... FROM STDIN.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, r.table, columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("copy into %s: %s (%s)", r.table.Sanitize(), pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("copy into %s: %w", r.table.Sanitize(), err)
	}
	return n, nil
}

// Exec runs a single statement.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres exec: %w", err)
	}
	return nil
}

// Close closes the pool.
func (r *Repository) Close() { r.pool.Close() }
