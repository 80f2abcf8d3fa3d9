package posts

import (
	"context"

	"github.com/goliatone/go-blog/models"
)

// PostRepository abstracts storage for posts and their tag associations.
// Records passed to Create and Update carry their tags in Post.Tags; only
// the slugs are persisted.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Latest(ctx context.Context, limit int) ([]*models.Post, error)
	ListByUser(ctx context.Context, shortname string) ([]*models.Post, error)
	ListByTag(ctx context.Context, tagSlug string) ([]*models.Post, error)
	CountByUser(ctx context.Context, shortname string) (int, error)
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, slug string) error
	DetachTag(ctx context.Context, tagSlug string) error
}

// UserLookup resolves post authors.
type UserLookup interface {
	GetByShortname(ctx context.Context, shortname string) (*models.User, error)
}

// TagLookup resolves tags attached to posts.
type TagLookup interface {
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
}
