// Package repomanager opens the configured storage backend, runs its schema
// migrations (via goose) and vends repository implementations bound to it.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Ping(ctx context.Context) error
	Close() error
}

// New opens the backend named by driver. dsn is ignored for the memory driver.
func New(ctx context.Context, driver, dsn string) (RepositoryManager, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryRepositoryManager(), nil
	case DriverSQLite:
		return NewSQLiteRepositoryManager(ctx, dsn)
	case DriverPostgres:
		return NewPostgresRepositoryManager(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// migrateUp is a seam for testing goose migrations.
var migrateUp = func(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}
