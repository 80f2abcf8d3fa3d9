package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/models"
)

// BunRepository persists users with bun.
type BunRepository struct {
	db bun.IDB
}

// NewBunRepository constructs a bun-backed user repository.
func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

var (
	_ UserRepository = (*BunRepository)(nil)
	_ CascadeDeleter = (*BunRepository)(nil)
)

func (r *BunRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	record := *user
	record.Posts, record.Services = nil, nil
	if _, err := r.db.NewInsert().Model(&record).Exec(ctx); err != nil {
		return nil, err
	}
	return r.GetByShortname(ctx, record.Shortname)
}

func (r *BunRepository) GetByShortname(ctx context.Context, shortname string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.shortname = ?", shortname).
		Relation("Services", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id ASC")
		}).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "user", Key: shortname}
		}
		return nil, err
	}
	return user, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*models.User, error) {
	var records []*models.User
	if err := r.db.NewSelect().Model(&records).Order("name ASC", "shortname ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	record := *user
	res, err := r.db.NewUpdate().
		Model(&record).
		Column("name", "url", "about_md", "about_html", "css_file", "js_file", "password_hash").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, &models.NotFoundError{Resource: "user", Key: user.Shortname}
	}
	return r.GetByShortname(ctx, record.Shortname)
}

func (r *BunRepository) Delete(ctx context.Context, shortname string) error {
	res, err := r.db.NewDelete().
		Model((*models.User)(nil)).
		Where("shortname = ?", shortname).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &models.NotFoundError{Resource: "user", Key: shortname}
	}
	return nil
}

func (r *BunRepository) DeleteCascade(ctx context.Context, shortname string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().Model((*models.Post)(nil)).Where("user_shortname = ?", shortname).Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrUserHasPosts
		}
		if _, err := tx.NewDelete().Model((*models.Service)(nil)).Where("user_shortname = ?", shortname).Exec(ctx); err != nil {
			return err
		}
		return NewBunRepository(tx).Delete(ctx, shortname)
	})
}
