package posts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/models"
)

// BunRepository persists posts and post_tags rows with bun.
type BunRepository struct {
	db bun.IDB
}

// NewBunRepository constructs a bun-backed post repository. The database must
// have models.PostTag registered.
func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

var _ PostRepository = (*BunRepository)(nil)

func (r *BunRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	record := stripRelations(post)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return err
		}
		return insertTags(ctx, tx, record.Slug, post.TagSlugs())
	})
	if err != nil {
		return nil, err
	}
	return r.GetBySlug(ctx, record.Slug)
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post := new(models.Post)
	err := r.selectPosts(post).Where("p.slug = ?", slug).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "post", Key: slug}
		}
		return nil, err
	}
	return post, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*models.Post, error) {
	var records []*models.Post
	if err := r.selectPosts(&records).Order("p.date DESC", "p.slug ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) Latest(ctx context.Context, limit int) ([]*models.Post, error) {
	var records []*models.Post
	if err := r.selectPosts(&records).Order("p.date DESC", "p.slug ASC").Limit(limit).Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) ListByUser(ctx context.Context, shortname string) ([]*models.Post, error) {
	var records []*models.Post
	err := r.selectPosts(&records).
		Where("p.user_shortname = ?", shortname).
		Order("p.date ASC", "p.slug ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) ListByTag(ctx context.Context, tagSlug string) ([]*models.Post, error) {
	var records []*models.Post
	err := r.selectPosts(&records).
		Join("JOIN post_tags AS pt ON pt.post_slug = p.slug").
		Where("pt.tag_slug = ?", tagSlug).
		Order("p.date ASC", "p.slug ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) CountByUser(ctx context.Context, shortname string) (int, error) {
	return r.db.NewSelect().Model((*models.Post)(nil)).Where("user_shortname = ?", shortname).Count(ctx)
}

func (r *BunRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	record := stripRelations(post)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(record).
			Column("date", "title", "lead", "body_md", "body_html", "css_file", "js_file", "user_shortname").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return &models.NotFoundError{Resource: "post", Key: record.Slug}
		}
		if _, err := tx.NewDelete().Model((*models.PostTag)(nil)).Where("post_slug = ?", record.Slug).Exec(ctx); err != nil {
			return err
		}
		return insertTags(ctx, tx, record.Slug, post.TagSlugs())
	})
	if err != nil {
		return nil, err
	}
	return r.GetBySlug(ctx, record.Slug)
}

func (r *BunRepository) Delete(ctx context.Context, slug string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.PostTag)(nil)).Where("post_slug = ?", slug).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Post)(nil)).Where("slug = ?", slug).Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return &models.NotFoundError{Resource: "post", Key: slug}
		}
		return nil
	})
}

func (r *BunRepository) DetachTag(ctx context.Context, tagSlug string) error {
	_, err := r.db.NewDelete().Model((*models.PostTag)(nil)).Where("tag_slug = ?", tagSlug).Exec(ctx)
	return err
}

func (r *BunRepository) selectPosts(model any) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(model).
		Relation("User").
		Relation("Tags", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("t.name ASC")
		})
}

func insertTags(ctx context.Context, tx bun.Tx, postSlug string, tagSlugs []string) error {
	if len(tagSlugs) == 0 {
		return nil
	}
	rows := make([]models.PostTag, 0, len(tagSlugs))
	for _, slug := range tagSlugs {
		rows = append(rows, models.PostTag{PostSlug: postSlug, TagSlug: slug})
	}
	_, err := tx.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func stripRelations(post *models.Post) *models.Post {
	record := *post
	record.User = nil
	record.Tags = nil
	return &record
}
