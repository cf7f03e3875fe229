package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryRepository keeps users in process memory. A single mutex arbitrates
// writers, so the uniqueness check and the insert happen as one step.
type MemoryRepository struct {
	mu         sync.RWMutex
	lastID     int64
	byID       map[int64]*models.User
	byEmail    map[string]int64
	byUsername map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[int64]*models.User),
		byEmail:    make(map[string]int64),
		byUsername: make(map[string]int64),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.PasswordHash == "" {
		return nil, ErrEmptyPasswordHash
	}

	u := *user
	u.Email = models.NormalizeEmail(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[u.UserName]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, common.ErrDuplicateIdentity
	}

	r.lastID++
	u.ID = r.lastID
	u.CreatedAt = time.Now().UTC()

	r.byID[u.ID] = &u
	r.byEmail[u.Email] = u.ID
	r.byUsername[u.UserName] = u.ID

	created := u
	return &created, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.get(id)
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.get(id)
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		c := *u
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })

	return result, nil
}

// get must be called with r.mu held.
func (r *MemoryRepository) get(id int64) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}
