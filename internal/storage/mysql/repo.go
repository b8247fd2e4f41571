// Package mysql implements a MySQL repository with go-sql-driver/mysql.
// Batches are written as one multi-row INSERT per CopyFrom call.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"referralreport/internal/ddl"
	"referralreport/internal/storage"
)

// maxPlaceholders stays under the server's 65535 prepared-statement limit.
const maxPlaceholders = 65000

// Dialect renders MySQL DDL.
var Dialect = ddl.Dialect{
	Name:  "mysql",
	Quote: ddl.Enclose("`", "`"),
	Types: map[ddl.Kind]string{
		ddl.KindText:      "TEXT",
		ddl.KindTimestamp: "DATETIME(6)",
		ddl.KindFloat:     "DOUBLE",
		ddl.KindBool:      "BOOLEAN",
	},
	Create: ddl.IfNotExists,
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db    *sql.DB
	table string
}

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return Open(ctx, cfg.DSN, cfg.Table)
	})
	storage.RegisterDDL("mysql", Dialect)
}

// Open parses dsn, forces UTC time handling, connects and pings.
func Open(ctx context.Context, dsn, table string) (*Repository, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return &Repository{db: db, table: table}, nil
}

// CopyFrom inserts rows with multi-row INSERT statements inside one
// transaction, splitting when the placeholder limit would be exceeded.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}

	var total int64
	for _, chunk := range chunkRows(rows, maxPlaceholders/len(columns)) {
		stmt, args, err := insertSQL(r.table, columns, chunk)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: rows affected: %w", err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return total, nil
}

// insertSQL builds one INSERT with a VALUES tuple per row and the flattened
// argument list.
func insertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		Dialect.QuoteFQN(table), strings.Join(Dialect.QuoteAll(columns), ", "))

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

func chunkRows(rows [][]any, size int) [][][]any {
	if size < 1 {
		size = 1
	}
	var out [][][]any
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	return append(out, rows)
}

// Exec runs a single statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql exec: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Repository) Close() { _ = r.db.Close() }
