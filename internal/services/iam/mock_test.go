package iam

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/terraconstructs/taskapi/internal/db/models"
	"github.com/terraconstructs/taskapi/internal/repository"
)

// mockUserStore is an in-memory user store enforcing subject uniqueness.
type mockUserStore struct {
	mu    sync.Mutex
	users []*models.User

	creates int
	err     error

	// beforeCreate runs inside Create before the uniqueness check.
	beforeCreate func()
}

func (m *mockUserStore) add(u *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.users = append(m.users, u)
	return u
}

func (m *mockUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Username == username && u.HasPassword() {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserStore) GetBySubject(_ context.Context, subject string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ExternalSubject() == subject {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserStore) Create(_ context.Context, user *models.User) error {
	if m.beforeCreate != nil {
		hook := m.beforeCreate
		m.beforeCreate = nil
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if user.Subject != nil && u.ExternalSubject() == *user.Subject {
			return repository.ErrDuplicate
		}
	}
	m.creates++
	user.ID = uuid.NewString()
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
