package tags

import (
	"context"

	"github.com/goliatone/go-blog/models"
)

// TagRepository abstracts storage for tags.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	Delete(ctx context.Context, slug string) error
}

// PostDetacher removes a tag from every post that carries it.
type PostDetacher interface {
	DetachTag(ctx context.Context, slug string) error
}
