package users

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-blog/models"
)

// MemoryRepository keeps users in memory for tests and scaffolding.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

var _ UserRepository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Shortname]; ok {
		return nil, models.ErrShortnameExists
	}
	stored := cloneUser(user)
	m.users[stored.Shortname] = stored
	return cloneUser(stored), nil
}

func (m *MemoryRepository) GetByShortname(_ context.Context, shortname string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[shortname]
	if !ok {
		return nil, &models.NotFoundError{Resource: "user", Key: shortname}
	}
	return cloneUser(user), nil
}

func (m *MemoryRepository) List(context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, cloneUser(user))
	}
	slices.SortFunc(out, func(a, b *models.User) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Shortname, b.Shortname)
	})
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Shortname]; !ok {
		return nil, &models.NotFoundError{Resource: "user", Key: user.Shortname}
	}
	stored := cloneUser(user)
	m.users[stored.Shortname] = stored
	return cloneUser(stored), nil
}

func (m *MemoryRepository) Delete(_ context.Context, shortname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[shortname]; !ok {
		return &models.NotFoundError{Resource: "user", Key: shortname}
	}
	delete(m.users, shortname)
	return nil
}

func cloneUser(src *models.User) *models.User {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Posts = nil
	cloned.Services = nil
	return &cloned
}
