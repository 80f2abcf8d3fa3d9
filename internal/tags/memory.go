package tags

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-blog/models"
)

// MemoryRepository keeps tags in memory for tests and scaffolding.
type MemoryRepository struct {
	mu   sync.RWMutex
	tags map[string]*models.Tag
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tags: make(map[string]*models.Tag)}
}

var _ TagRepository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, tag *models.Tag) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tags[tag.Slug]; ok {
		return nil, models.ErrSlugExists
	}
	m.tags[tag.Slug] = cloneTag(tag)
	return cloneTag(tag), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tag, ok := m.tags[slug]
	if !ok {
		return nil, &models.NotFoundError{Resource: "tag", Key: slug}
	}
	return cloneTag(tag), nil
}

func (m *MemoryRepository) List(context.Context) ([]*models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Tag, 0, len(m.tags))
	for _, tag := range m.tags {
		out = append(out, cloneTag(tag))
	}
	slices.SortFunc(out, func(a, b *models.Tag) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, tag *models.Tag) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tags[tag.Slug]; !ok {
		return nil, &models.NotFoundError{Resource: "tag", Key: tag.Slug}
	}
	m.tags[tag.Slug] = cloneTag(tag)
	return cloneTag(tag), nil
}

func (m *MemoryRepository) Delete(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tags[slug]; !ok {
		return &models.NotFoundError{Resource: "tag", Key: slug}
	}
	delete(m.tags, slug)
	return nil
}

func cloneTag(src *models.Tag) *models.Tag {
	if src == nil {
		return nil
	}
	return &models.Tag{Slug: src.Slug, Name: src.Name}
}
