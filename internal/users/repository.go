package users

import (
	"context"

	"github.com/goliatone/go-blog/models"
)

// UserRepository abstracts storage for user records.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByShortname(ctx context.Context, shortname string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, shortname string) error
}

// PostCounter reports how many posts a user authored.
type PostCounter interface {
	CountByUser(ctx context.Context, shortname string) (int, error)
}

// ServiceLinkRemover drops the service links owned by a user.
type ServiceLinkRemover interface {
	DeleteByUser(ctx context.Context, shortname string) error
}

// CascadeDeleter removes a user together with its service links in a single
// transaction. It fails with models.ErrUserHasPosts while the user still
// authors posts.
type CascadeDeleter interface {
	DeleteCascade(ctx context.Context, shortname string) error
}
