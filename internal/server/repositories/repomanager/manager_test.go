package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), "mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage driver "mysql"`)
}

func TestNew_Memory(t *testing.T) {
	ctx := context.Background()
	m, err := New(ctx, DriverMemory, "ignored")
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Ping(ctx))

	u, err := m.Users().Create(ctx, &models.User{UserName: "alice", Email: "alice@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	// the same repository instance is handed out every time
	got, err := m.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)
}

func TestMemoryPing_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemoryRepositoryManager().Ping(ctx), context.Canceled)
}

func TestNew_SQLiteInMemory(t *testing.T) {
	ctx := context.Background()
	m, err := New(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.RunMigrations(ctx))
	// re-running is a no-op
	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Ping(ctx))

	_, err = m.Users().Create(ctx, &models.User{UserName: "alice", Email: "alice@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = m.Users().Create(ctx, &models.User{UserName: "bob", Email: "ALICE@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
}

func TestSQLite_FilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	m, err := NewSQLiteRepositoryManager(ctx, path)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(ctx))
	created, err := m.Users().Create(ctx, &models.User{UserName: "alice", Email: "alice@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m, err = NewSQLiteRepositoryManager(ctx, path)
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.RunMigrations(ctx))

	got, err := m.Users().GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ":memory:"},
		{":memory:", ":memory:"},
		{"app.db", "app.db?" + sqlitePragmas},
		{"file:app.db?cache=shared", "file:app.db?cache=shared&" + sqlitePragmas},
		{"app.db?_pragma=foreign_keys(1)", "app.db?_pragma=foreign_keys(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func withPostgresMock(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	orig := sqlOpen
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" {
			return nil, errors.New("unexpected driver " + driverName)
		}
		return db, nil
	}
	t.Cleanup(func() { sqlOpen = orig })
	return mock
}

func TestNewPostgresRepositoryManager_PingFails(t *testing.T) {
	mock := withPostgresMock(t)
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	_, err := New(context.Background(), DriverPostgres, "postgres://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error: refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryManager_RunMigrations(t *testing.T) {
	mock := withPostgresMock(t)
	mock.ExpectPing()

	m, err := NewPostgresRepositoryManager(context.Background(), "postgres://x")
	require.NoError(t, err)

	orig := migrateUp
	defer func() { migrateUp = orig }()

	var gotDialect goose.Dialect
	var gotFS fs.FS
	migrateUp = func(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
		gotDialect, gotFS = dialect, fsys
		return nil
	}
	require.NoError(t, m.RunMigrations(context.Background()))
	assert.Equal(t, goose.DialectPostgres, gotDialect)

	matches, err := fs.Glob(gotFS, "*.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	migrateUp = func(context.Context, goose.Dialect, *sql.DB, fs.FS) error { return errors.New("boom") }
	err = m.RunMigrations(context.Background())
	assert.EqualError(t, err, "migration error: boom")

	assert.NotNil(t, m.Users())
	mock.ExpectPing()
	assert.NoError(t, m.Ping(context.Background()))
	mock.ExpectClose()
	assert.NoError(t, m.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
