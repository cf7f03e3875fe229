package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SQLiteRepositoryManager vends SQLite-backed repositories. It is the
// default backend and needs no external server.
type SQLiteRepositoryManager struct {
	db *sql.DB
}

func NewSQLiteRepositoryManager(ctx context.Context, dsn string) (*SQLiteRepositoryManager, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	// A single writer avoids SQLITE_BUSY; for :memory: it also keeps every
	// query on the one connection that owns the database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return &SQLiteRepositoryManager{db: db}, nil
}

func sqliteDSN(dsn string) string {
	switch {
	case dsn == "":
		return ":memory:"
	case dsn == ":memory:", strings.Contains(dsn, "_pragma="):
		return dsn
	case strings.Contains(dsn, "?"):
		return dsn + "&" + sqlitePragmas
	default:
		return dsn + "?" + sqlitePragmas
	}
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := migrateUp(ctx, goose.DialectSQLite3, m.db, migrations.SQLite()); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

func (m *SQLiteRepositoryManager) Users() users.Repository {
	return users.NewSQLiteRepository(m.db)
}

func (m *SQLiteRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *SQLiteRepositoryManager) Close() error {
	return m.db.Close()
}
