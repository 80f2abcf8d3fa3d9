package servicelinks

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-blog/models"
)

// MemoryRepository keeps service links in memory with sequential ids.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	links  map[int64]*models.Service
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{links: make(map[int64]*models.Service)}
}

var _ ServiceRepository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, link *models.Service) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	stored := cloneService(link)
	stored.ID = m.nextID
	m.links[stored.ID] = stored
	return cloneService(stored), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id int64) (*models.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[id]
	if !ok {
		return nil, notFound(id)
	}
	return cloneService(link), nil
}

func (m *MemoryRepository) List(context.Context) ([]*models.Service, error) {
	return m.filter(func(*models.Service) bool { return true }), nil
}

func (m *MemoryRepository) ListByUser(_ context.Context, shortname string) ([]*models.Service, error) {
	return m.filter(func(s *models.Service) bool { return s.UserShortname == shortname }), nil
}

func (m *MemoryRepository) Update(_ context.Context, link *models.Service) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.ID]; !ok {
		return nil, notFound(link.ID)
	}
	stored := cloneService(link)
	m.links[stored.ID] = stored
	return cloneService(stored), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[id]; !ok {
		return notFound(id)
	}
	delete(m.links, id)
	return nil
}

func (m *MemoryRepository) DeleteByUser(_ context.Context, shortname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, link := range m.links {
		if link.UserShortname == shortname {
			delete(m.links, id)
		}
	}
	return nil
}

func (m *MemoryRepository) filter(keep func(*models.Service) bool) []*models.Service {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Service, 0, len(m.links))
	for _, link := range m.links {
		if keep(link) {
			out = append(out, cloneService(link))
		}
	}
	slices.SortFunc(out, func(a, b *models.Service) int {
		if c := strings.Compare(a.UserShortname, b.UserShortname); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func cloneService(src *models.Service) *models.Service {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.User = nil
	return &cloned
}
