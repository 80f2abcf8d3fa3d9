package posts

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-blog/models"
)

// MemoryRepository keeps posts in memory. Returned posts carry tag slugs only
// and no author; the service resolves both.
type MemoryRepository struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{posts: make(map[string]*models.Post)}
}

var _ PostRepository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, post *models.Post) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[post.Slug]; ok {
		return nil, models.ErrSlugExists
	}
	stored := clonePost(post)
	m.posts[stored.Slug] = stored
	return clonePost(stored), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	post, ok := m.posts[slug]
	if !ok {
		return nil, &models.NotFoundError{Resource: "post", Key: slug}
	}
	return clonePost(post), nil
}

func (m *MemoryRepository) List(context.Context) ([]*models.Post, error) {
	return m.filter(nil, newestFirst), nil
}

func (m *MemoryRepository) Latest(_ context.Context, limit int) ([]*models.Post, error) {
	out := m.filter(nil, newestFirst)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) ListByUser(_ context.Context, shortname string) ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return p.UserShortname == shortname }, oldestFirst), nil
}

func (m *MemoryRepository) ListByTag(_ context.Context, tagSlug string) ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return slices.Contains(p.TagSlugs(), tagSlug) }, oldestFirst), nil
}

func (m *MemoryRepository) CountByUser(ctx context.Context, shortname string) (int, error) {
	posts, _ := m.ListByUser(ctx, shortname)
	return len(posts), nil
}

func (m *MemoryRepository) Update(_ context.Context, post *models.Post) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[post.Slug]; !ok {
		return nil, &models.NotFoundError{Resource: "post", Key: post.Slug}
	}
	stored := clonePost(post)
	m.posts[stored.Slug] = stored
	return clonePost(stored), nil
}

func (m *MemoryRepository) Delete(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[slug]; !ok {
		return &models.NotFoundError{Resource: "post", Key: slug}
	}
	delete(m.posts, slug)
	return nil
}

func (m *MemoryRepository) DetachTag(_ context.Context, tagSlug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, post := range m.posts {
		post.Tags = slices.DeleteFunc(post.Tags, func(t *models.Tag) bool { return t.Slug == tagSlug })
	}
	return nil
}

func (m *MemoryRepository) filter(keep func(*models.Post) bool, order func(a, b *models.Post) int) []*models.Post {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		if keep == nil || keep(post) {
			out = append(out, clonePost(post))
		}
	}
	slices.SortFunc(out, order)
	return out
}

func newestFirst(a, b *models.Post) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return strings.Compare(a.Slug, b.Slug)
}

func oldestFirst(a, b *models.Post) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return strings.Compare(a.Slug, b.Slug)
}

func clonePost(src *models.Post) *models.Post {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.User = nil
	cloned.Tags = nil
	for _, slug := range src.TagSlugs() {
		cloned.Tags = append(cloned.Tags, &models.Tag{Slug: slug})
	}
	return &cloned
}
