package memory

import (
	"context"
	"sync"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/auth"
)

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo is an in-memory user repository.
type UserRepo struct {
	mu    sync.RWMutex
	users map[id.ID]*auth.User
}

// NewUserRepo creates an in-memory user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[id.ID]*auth.User)}
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return apperror.NewDuplicate("user", "id", user.ID.String())
	}
	r.users[user.ID] = user
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return user, nil
}

// GetByEmail retrieves user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

// Update replaces an existing user.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return apperror.NewNotFound("user", user.ID.String())
	}
	r.users[user.ID] = user
	return nil
}

// Exists checks whether a user with the email exists.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}
