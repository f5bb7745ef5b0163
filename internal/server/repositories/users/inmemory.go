package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used in tests and local
// development. It applies the same uniqueness rule as the Postgres backend.
type InMemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*models.User
	byEmail map[string]int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID:  1,
		byID:    make(map[int64]*models.User),
		byEmail: make(map[string]int64),
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *InMemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *InMemoryRepository) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return nil, common.ErrAlreadyExists
	}

	now := time.Now().UTC()
	stored := cloneUser(user)
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.nextID++

	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID

	return cloneUser(stored), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.ID]
	if !ok {
		return nil, common.ErrNotFound
	}

	delete(r.byEmail, existing.Email)

	stored := cloneUser(user)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()

	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID

	return cloneUser(stored), nil
}
