// Package storage holds the backend-agnostic contract for the optional SQL
// sink of the referral report, the backend registry, and the batched loader.
//
// Backends register themselves from init; importing storage/all enables every
// built-in kind.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"referralreport/internal/ddl"
)

// Repository is the minimal surface the pipeline needs from a SQL backend.
type Repository interface {
	// CopyFrom inserts rows aligned to columns and returns how many were
	// written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	Close()
}

// Config selects and addresses a backend.
type Config struct {
	Kind  string
	DSN   string
	Table string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
	dialects  = map[string]ddl.Dialect{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// RegisterDDL installs the DDL dialect for kind.
func RegisterDDL(kind string, d ddl.Dialect) {
	regMu.Lock()
	defer regMu.Unlock()
	dialects[kind] = d
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}

// Dialect returns the DDL dialect registered for kind.
func Dialect(kind string) (ddl.Dialect, error) {
	regMu.RLock()
	d, ok := dialects[kind]
	regMu.RUnlock()
	if !ok {
		return ddl.Dialect{}, fmt.Errorf("no DDL dialect registered for storage kind %q", kind)
	}
	return d, nil
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
