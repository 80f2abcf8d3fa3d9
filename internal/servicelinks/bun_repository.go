package servicelinks

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/models"
)

// BunRepository persists service links with bun.
type BunRepository struct {
	db bun.IDB
}

// NewBunRepository constructs a bun-backed service link repository.
func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

var _ ServiceRepository = (*BunRepository)(nil)

func (r *BunRepository) Create(ctx context.Context, link *models.Service) (*models.Service, error) {
	record := *link
	record.ID = 0
	record.User = nil
	if _, err := r.db.NewInsert().Model(&record).Returning("id").Exec(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *BunRepository) GetByID(ctx context.Context, id int64) (*models.Service, error) {
	link := new(models.Service)
	err := r.db.NewSelect().Model(link).Relation("User").Where("s.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return link, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*models.Service, error) {
	var records []*models.Service
	if err := r.db.NewSelect().Model(&records).Relation("User").Order("s.user_shortname ASC", "s.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) ListByUser(ctx context.Context, shortname string) ([]*models.Service, error) {
	var records []*models.Service
	err := r.db.NewSelect().
		Model(&records).
		Relation("User").
		Where("s.user_shortname = ?", shortname).
		Order("s.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) Update(ctx context.Context, link *models.Service) (*models.Service, error) {
	record := *link
	record.User = nil
	res, err := r.db.NewUpdate().
		Model(&record).
		Column("name", "icon_file", "url", "alt_text", "css_class", "user_shortname").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFound(link.ID)
	}
	return r.GetByID(ctx, record.ID)
}

func (r *BunRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*models.Service)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *BunRepository) DeleteByUser(ctx context.Context, shortname string) error {
	_, err := r.db.NewDelete().Model((*models.Service)(nil)).Where("user_shortname = ?", shortname).Exec(ctx)
	return err
}

func notFound(id int64) error {
	return &models.NotFoundError{Resource: "service", Key: strconv.FormatInt(id, 10)}
}
