package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/user"
)

// UsersRepo is an in-memory credential store with the same semantics as the
// postgres one. Handler tests and local bring-up use it.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]user.User // keyed by username
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{users: make(map[string]user.User)}
}

func (r *UsersRepo) GetByUsernameOrEmail(_ context.Context, identifier string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[identifier]; ok {
		return u, nil
	}

	for _, u := range r.users {
		if u.Email == identifier {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[username]

	return ok, nil
}

func (r *UsersRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (r *UsersRepo) Create(_ context.Context, username, email, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// check-then-insert is atomic under the lock, matching the store
	// guarantee the postgres repo gets from its unique constraints
	if _, ok := r.users[username]; ok {
		return user.User{}, user.ErrUsernameTaken
	}

	for _, u := range r.users {
		if u.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.nextID++
	now := time.Now().UTC()

	u := user.User{
		ID:           r.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        []string{user.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.users[username] = u

	return u, nil
}

func (r *UsersRepo) RolesByUsername(_ context.Context, username string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]

	if !ok {
		return nil, user.ErrNotFound
	}

	out := make([]string, len(u.Roles))
	copy(out, u.Roles)

	return out, nil
}

// SetRoles replaces a user's role set, used to model role changes.
func (r *UsersRepo) SetRoles(username string, roles []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[username]; ok {
		u.Roles = append([]string(nil), roles...)
		r.users[username] = u
	}
}
