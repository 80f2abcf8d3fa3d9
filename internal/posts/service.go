package posts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DefaultLatestLimit is the number of posts shown on the index page.
const DefaultLatestLimit = 5

// Service exposes post use-cases.
type Service interface {
	Create(ctx context.Context, req CreatePostRequest) (*models.Post, error)
	Update(ctx context.Context, req UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, slug string) error
	Get(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Latest(ctx context.Context, n int) ([]*models.Post, error)
	ListByUser(ctx context.Context, shortname string) ([]*models.Post, error)
	ListByTag(ctx context.Context, tagSlug string) ([]*models.Post, error)
}

// CreatePostRequest captures the fields accepted when creating a post. A zero
// Date selects today.
type CreatePostRequest struct {
	Slug          string
	Date          time.Time
	Title         string
	Lead          string
	BodyMarkdown  string
	BodyHTML      string
	CSSFile       string
	JSFile        string
	UserShortname string
	Tags          []string
	Convert       bool
}

// UpdatePostRequest replaces the editable fields of the post selected by Slug.
type UpdatePostRequest struct {
	Slug          string
	Date          time.Time
	Title         string
	Lead          string
	BodyMarkdown  string
	BodyHTML      string
	CSSFile       string
	JSFile        string
	UserShortname string
	Tags          []string
	Convert       bool
}

// ServiceOption configures the post service.
type ServiceOption func(*service)

// WithClock overrides the clock used for default post dates.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMarkdown sets the parser used when Convert is requested.
func WithMarkdown(parser interfaces.MarkdownParser) ServiceOption {
	return func(s *service) {
		s.markdown = parser
	}
}

func WithActivity(recorder interfaces.ActivityRecorder) ServiceOption {
	return func(s *service) {
		s.activity = recorder
	}
}

type service struct {
	repo     PostRepository
	users    UserLookup
	tags     TagLookup
	markdown interfaces.MarkdownParser
	activity interfaces.ActivityRecorder
	logger   interfaces.Logger
	now      func() time.Time
}

// NewService constructs a post service.
func NewService(repo PostRepository, users UserLookup, tags TagLookup, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		users:  users,
		tags:   tags,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreatePostRequest) (*models.Post, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, models.ErrSlugRequired
	}
	if !models.IsValidSlug(slug) {
		return nil, models.ErrSlugInvalid
	}

	if _, err := s.repo.GetBySlug(ctx, slug); err == nil {
		return nil, models.ErrSlugExists
	} else if !models.IsNotFound(err) {
		return nil, err
	}

	post := &models.Post{Slug: slug}
	if err := s.apply(ctx, post, fields(req)); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		s.logger.Error("post.create.failed", "slug", slug, "error", err)
		return nil, err
	}
	s.logger.Info("post.create.success", "slug", slug, "author", post.UserShortname, "tags", len(post.Tags))
	s.record(ctx, "create", slug)
	return s.hydrateOne(ctx, created)
}

func (s *service) Update(ctx context.Context, req UpdatePostRequest) (*models.Post, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, models.ErrSlugRequired
	}

	existing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, existing, fields(CreatePostRequest(req))); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		s.logger.Error("post.update.failed", "slug", slug, "error", err)
		return nil, err
	}
	s.logger.Info("post.update.success", "slug", slug, "converted", req.Convert)
	s.record(ctx, "update", slug)
	return s.hydrateOne(ctx, updated)
}

func (s *service) Delete(ctx context.Context, slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return models.ErrSlugRequired
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		if !models.IsNotFound(err) {
			s.logger.Error("post.delete.failed", "slug", slug, "error", err)
		}
		return err
	}
	s.logger.Info("post.delete.success", "slug", slug)
	s.record(ctx, "delete", slug)
	return nil
}

func (s *service) Get(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	return s.hydrateOne(ctx, post)
}

func (s *service) List(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, posts)
}

func (s *service) Latest(ctx context.Context, n int) ([]*models.Post, error) {
	if n <= 0 {
		n = DefaultLatestLimit
	}
	posts, err := s.repo.Latest(ctx, n)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, posts)
}

func (s *service) ListByUser(ctx context.Context, shortname string) ([]*models.Post, error) {
	posts, err := s.repo.ListByUser(ctx, strings.TrimSpace(shortname))
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, posts)
}

func (s *service) ListByTag(ctx context.Context, tagSlug string) ([]*models.Post, error) {
	posts, err := s.repo.ListByTag(ctx, strings.TrimSpace(tagSlug))
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, posts)
}

type postFields struct {
	date          time.Time
	title         string
	lead          string
	bodyMarkdown  string
	bodyHTML      string
	cssFile       string
	jsFile        string
	userShortname string
	tags          []string
	convert       bool
}

func fields(req CreatePostRequest) postFields {
	return postFields{
		date:          req.Date,
		title:         strings.TrimSpace(req.Title),
		lead:          strings.TrimSpace(req.Lead),
		bodyMarkdown:  req.BodyMarkdown,
		bodyHTML:      req.BodyHTML,
		cssFile:       strings.TrimSpace(req.CSSFile),
		jsFile:        strings.TrimSpace(req.JSFile),
		userShortname: strings.TrimSpace(req.UserShortname),
		tags:          req.Tags,
		convert:       req.Convert,
	}
}

// apply validates f and copies it onto post, resolving author and tags.
func (s *service) apply(ctx context.Context, post *models.Post, f postFields) error {
	if f.title == "" {
		return models.ErrTitleRequired
	}
	if f.userShortname == "" {
		return models.ErrAuthorRequired
	}

	author, err := s.users.GetByShortname(ctx, f.userShortname)
	if err != nil {
		if models.IsNotFound(err) {
			return models.ErrUserNotFound
		}
		return err
	}

	tags, err := s.resolveTags(ctx, f.tags)
	if err != nil {
		return err
	}

	html := f.bodyHTML
	if f.convert {
		if s.markdown == nil {
			return errors.New("posts: markdown conversion requested without a parser")
		}
		rendered, err := s.markdown.Parse([]byte(f.bodyMarkdown))
		if err != nil {
			return err
		}
		html = string(rendered)
	}

	date := f.date
	if date.IsZero() {
		date = s.now()
	}

	post.Date = models.DateOnly(date)
	post.Title = f.title
	post.Lead = f.lead
	post.BodyMarkdown = f.bodyMarkdown
	post.BodyHTML = html
	post.CSSFile = f.cssFile
	post.JSFile = f.jsFile
	post.UserShortname = author.Shortname
	post.User = author
	post.Tags = tags
	return nil
}

func (s *service) resolveTags(ctx context.Context, slugs []string) ([]*models.Tag, error) {
	var out []*models.Tag
	seen := map[string]struct{}{}
	for _, slug := range slugs {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		tag, err := s.tags.GetBySlug(ctx, slug)
		if err != nil {
			if models.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s", models.ErrTagNotFound, slug)
			}
			return nil, err
		}
		seen[slug] = struct{}{}
		out = append(out, tag)
	}
	return out, nil
}

func (s *service) hydrateAll(ctx context.Context, posts []*models.Post) ([]*models.Post, error) {
	authors := map[string]*models.User{}
	for _, post := range posts {
		if err := s.fill(ctx, post, authors); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *service) hydrateOne(ctx context.Context, post *models.Post) (*models.Post, error) {
	if err := s.fill(ctx, post, map[string]*models.User{}); err != nil {
		return nil, err
	}
	return post, nil
}

// fill resolves the author and tag names of posts loaded without relations.
func (s *service) fill(ctx context.Context, post *models.Post, authors map[string]*models.User) error {
	if post.User == nil && post.UserShortname != "" {
		author, ok := authors[post.UserShortname]
		if !ok {
			found, err := s.users.GetByShortname(ctx, post.UserShortname)
			if err != nil && !models.IsNotFound(err) {
				return err
			}
			author = found
			authors[post.UserShortname] = found
		}
		post.User = author
	}

	if !slices.ContainsFunc(post.Tags, func(t *models.Tag) bool { return t.Name == "" }) {
		return nil
	}
	resolved := make([]*models.Tag, 0, len(post.Tags))
	for _, tag := range post.Tags {
		if tag.Name != "" {
			resolved = append(resolved, tag)
			continue
		}
		found, err := s.tags.GetBySlug(ctx, tag.Slug)
		if err != nil {
			if models.IsNotFound(err) {
				continue
			}
			return err
		}
		resolved = append(resolved, found)
	}
	slices.SortFunc(resolved, func(a, b *models.Tag) int { return strings.Compare(a.Name, b.Name) })
	post.Tags = resolved
	return nil
}

func (s *service) record(ctx context.Context, verb, slug string) {
	if s.activity != nil {
		s.activity.Record(ctx, verb, "post", slug, nil)
	}
}
