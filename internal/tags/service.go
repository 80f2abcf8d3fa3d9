package tags

import (
	"context"
	"strings"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Service exposes tag use-cases.
type Service interface {
	Create(ctx context.Context, req CreateTagRequest) (*models.Tag, error)
	Update(ctx context.Context, req UpdateTagRequest) (*models.Tag, error)
	Delete(ctx context.Context, slug string) error
	Get(ctx context.Context, slug string) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
}

type CreateTagRequest struct {
	Slug string
	Name string
}

// UpdateTagRequest renames the tag selected by Slug.
type UpdateTagRequest struct {
	Slug string
	Name string
}

// ServiceOption configures the tag service.
type ServiceOption func(*service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithActivity(recorder interfaces.ActivityRecorder) ServiceOption {
	return func(s *service) {
		s.activity = recorder
	}
}

// WithPostDetacher clears associations before a tag is removed.
func WithPostDetacher(detacher PostDetacher) ServiceOption {
	return func(s *service) {
		s.detacher = detacher
	}
}

type service struct {
	repo     TagRepository
	detacher PostDetacher
	activity interfaces.ActivityRecorder
	logger   interfaces.Logger
}

// NewService constructs a tag service.
func NewService(repo TagRepository, opts ...ServiceOption) Service {
	s := &service{repo: repo, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateTagRequest) (*models.Tag, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, models.ErrSlugRequired
	}
	if !models.IsValidSlug(slug) {
		return nil, models.ErrSlugInvalid
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.ErrNameRequired
	}

	if _, err := s.repo.GetBySlug(ctx, slug); err == nil {
		return nil, models.ErrSlugExists
	} else if !models.IsNotFound(err) {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.Tag{Slug: slug, Name: name})
	if err != nil {
		s.logger.Error("tag.create.failed", "slug", slug, "error", err)
		return nil, err
	}
	s.logger.Info("tag.create.success", "slug", slug)
	s.record(ctx, "create", slug)
	return created, nil
}

func (s *service) Update(ctx context.Context, req UpdateTagRequest) (*models.Tag, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, models.ErrSlugRequired
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.ErrNameRequired
	}

	existing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	existing.Name = name

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		s.logger.Error("tag.update.failed", "slug", slug, "error", err)
		return nil, err
	}
	s.logger.Info("tag.update.success", "slug", slug)
	s.record(ctx, "update", slug)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return models.ErrSlugRequired
	}
	if _, err := s.repo.GetBySlug(ctx, slug); err != nil {
		return err
	}
	if s.detacher != nil {
		if err := s.detacher.DetachTag(ctx, slug); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		s.logger.Error("tag.delete.failed", "slug", slug, "error", err)
		return err
	}
	s.logger.Info("tag.delete.success", "slug", slug)
	s.record(ctx, "delete", slug)
	return nil
}

func (s *service) Get(ctx context.Context, slug string) (*models.Tag, error) {
	return s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
}

func (s *service) List(ctx context.Context) ([]*models.Tag, error) {
	return s.repo.List(ctx)
}

func (s *service) record(ctx context.Context, verb, slug string) {
	if s.activity != nil {
		s.activity.Record(ctx, verb, "tag", slug, nil)
	}
}
