package users

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newSQLiteRepo(t *testing.T) Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.SQLite())
	require.NoError(t, err)
	_, err = p.Up(context.Background())
	require.NoError(t, err)

	return NewSQLiteRepository(db)
}

func newMemoryRepo(t *testing.T) Repository {
	t.Helper()
	return NewMemoryRepository()
}

func TestRepositoryContract(t *testing.T) {
	backends := map[string]func(t *testing.T) Repository{
		"memory": newMemoryRepo,
		"sqlite": newSQLiteRepo,
	}

	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("create assigns increasing ids", func(t *testing.T) {
				testCreateAssignsIDs(t, newRepo(t))
			})
			t.Run("duplicate identity", func(t *testing.T) {
				testDuplicateIdentity(t, newRepo(t))
			})
			t.Run("lookups", func(t *testing.T) {
				testLookups(t, newRepo(t))
			})
			t.Run("list newest first", func(t *testing.T) {
				testListNewestFirst(t, newRepo(t))
			})
			t.Run("empty hash rejected", func(t *testing.T) {
				_, err := newRepo(t).Create(context.Background(), &models.User{UserName: "a", Email: "a@x.com"})
				assert.ErrorIs(t, err, ErrEmptyPasswordHash)
			})
			t.Run("concurrent creators", func(t *testing.T) {
				testConcurrentCreate(t, newRepo(t))
			})
		})
	}
}

func mustCreate(t *testing.T, r Repository, username, email string) *models.User {
	t.Helper()
	u, err := r.Create(context.Background(), &models.User{UserName: username, Email: email, PasswordHash: "hash-" + username})
	require.NoError(t, err)
	return u
}

func testCreateAssignsIDs(t *testing.T, r Repository) {
	a := mustCreate(t, r, "alice", " Alice@X.com ")
	b := mustCreate(t, r, "bob", "bob@x.com")

	assert.Equal(t, "alice@x.com", a.Email)
	assert.Equal(t, "hash-alice", a.PasswordHash)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Greater(t, a.ID, int64(0))
	assert.Greater(t, b.ID, a.ID)
}

func testDuplicateIdentity(t *testing.T, r Repository) {
	ctx := context.Background()
	a := mustCreate(t, r, "alice", "alice@x.com")

	_, err := r.Create(ctx, &models.User{UserName: "alice2", Email: "ALICE@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)

	_, err = r.Create(ctx, &models.User{UserName: "alice", Email: "other@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)

	got, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.View(), got.View())
	assert.Equal(t, "hash-alice", got.PasswordHash)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testLookups(t *testing.T, r Repository) {
	ctx := context.Background()
	a := mustCreate(t, r, "Alice", "alice@x.com")

	byEmail, err := r.GetByEmail(ctx, "  ALICE@X.COM")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)

	byName, err := r.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byName.ID)

	_, err = r.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrorNotFound, "usernames match exactly")

	_, err = r.GetByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.GetByID(ctx, 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func testListNewestFirst(t *testing.T, r Repository) {
	empty, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)

	var ids []int64
	for i := 0; i < 4; i++ {
		u := mustCreate(t, r, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@x.com", i))
		ids = append(ids, u.ID)
	}

	all, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, u := range all {
		assert.Equal(t, ids[len(ids)-1-i], u.ID)
	}
}

func testConcurrentCreate(t *testing.T, r Repository) {
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Create(context.Background(), &models.User{
				UserName:     fmt.Sprintf("racer%d", i),
				Email:        "same@x.com",
				PasswordHash: "h",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, common.ErrDuplicateIdentity):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
}
