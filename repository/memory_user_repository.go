package repository

import (
	"context"
	"sync"
	"time"

	"chem-purchase-assistant/models"
)

// MemoryUserRepository keeps users in process memory. The server falls back
// to it when no database is configured; accounts do not survive a restart.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]models.User
	now    func() time.Time
}

// NewMemoryUserRepository creates an empty MemoryUserRepository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
		now:   time.Now,
	}
}

var _ UserRepositoryInterface = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) Create(_ context.Context, username, passwordHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return nil, ErrUserExists
	}
	r.nextID++
	user := models.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC().Format(time.RFC3339),
	}
	r.users[username] = user
	return &user, nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
