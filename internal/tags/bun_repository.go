package tags

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/models"
)

// tagIDSpace derives the stable record ids the generic repository expects
// from tag slugs, which are the real primary key.
var tagIDSpace = uuid.MustParse("5b0f3f4e-3c1d-4f0e-9a57-7d7c4c3b8e21")

// NewTagRepository creates the generic repository for Tag records, looked
// up by slug.
func NewTagRepository(db *bun.DB) repository.Repository[*models.Tag] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*models.Tag]{
		NewRecord: func() *models.Tag { return &models.Tag{} },
		GetID: func(t *models.Tag) uuid.UUID {
			return uuid.NewSHA1(tagIDSpace, []byte(t.Slug))
		},
		SetID: func(*models.Tag, uuid.UUID) {},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(t *models.Tag) string {
			return t.Slug
		},
	})
}

// BunRepository persists tags with bun, optionally reading through the
// repository cache.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*models.Tag]
}

// NewBunRepository constructs a bun-backed tag repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache constructs a tag repository whose reads go
// through cacheService. Writes invalidate the cached entries.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewTagRepository(db)
	r := &BunRepository{db: db, repo: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.NewWithIdentifierFields(base, cacheService, serializer, "Slug")
	}
	return r
}

var _ TagRepository = (*BunRepository)(nil)

var byName = repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
	// no page limit; a blog has few tags
	return q.Order("name ASC", "slug ASC").Limit(0)
})

func (r *BunRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	return r.repo.Create(ctx, &models.Tag{Slug: tag.Slug, Name: tag.Name})
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	tag, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, slug)
	}
	copied := *tag
	return &copied, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*models.Tag, error) {
	records, _, err := r.repo.List(ctx, byName)
	return records, err
}

func (r *BunRepository) Update(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	updated, err := r.repo.Update(ctx, &models.Tag{Slug: tag.Slug, Name: tag.Name})
	if err != nil {
		return nil, mapRepositoryError(err, tag.Slug)
	}
	return updated, nil
}

// Delete removes the tag and its post associations in one transaction.
func (r *BunRepository) Delete(ctx context.Context, slug string) error {
	if _, err := r.GetBySlug(ctx, slug); err != nil {
		return err
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.PostTag)(nil)).Where("tag_slug = ?", slug).Exec(ctx); err != nil {
			return err
		}
		return r.repo.DeleteTx(ctx, tx, &models.Tag{Slug: slug})
	})
}

func mapRepositoryError(err error, slug string) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) ||
		goerrors.IsCategory(err, repository.CategoryDatabaseExpectedCount) {
		return &models.NotFoundError{Resource: "tag", Key: slug}
	}
	return fmt.Errorf("tag repository error: %w", err)
}
