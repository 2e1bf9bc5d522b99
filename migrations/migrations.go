// Package migrations holds the goose schema migrations shared by the SQLite and
// Postgres user stores.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// goose keeps its base FS and dialect in package state.
var mu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies every pending migration using the given goose dialect
// ("sqlite3" or "pgx").
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
