package auth

import (
	"context"
	"errors"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	logins map[int]Login
}

// NewMemoryRepository builds an in-memory credential store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{logins: make(map[int]Login)}
}

func (r *memoryRepository) Create(_ context.Context, login Login) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.logins[login.MemberID]; exists {
		return errors.New("login exists")
	}
	r.logins[login.MemberID] = login
	return nil
}

func (r *memoryRepository) FindByMemberID(_ context.Context, memberID int) (Login, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	login, ok := r.logins[memberID]
	if !ok {
		return Login{}, ErrLoginNotFound
	}
	return login, nil
}
