package servicelinks

import (
	"context"

	"github.com/goliatone/go-blog/models"
)

// ServiceRepository abstracts storage for service links.
type ServiceRepository interface {
	Create(ctx context.Context, link *models.Service) (*models.Service, error)
	GetByID(ctx context.Context, id int64) (*models.Service, error)
	List(ctx context.Context) ([]*models.Service, error)
	ListByUser(ctx context.Context, shortname string) ([]*models.Service, error)
	Update(ctx context.Context, link *models.Service) (*models.Service, error)
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, shortname string) error
}

// UserLookup resolves service owners.
type UserLookup interface {
	GetByShortname(ctx context.Context, shortname string) (*models.User, error)
}
