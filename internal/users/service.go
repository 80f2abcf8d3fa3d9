package users

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-blog/internal/auth/password"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Service exposes user management use-cases.
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, req UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, shortname string) error
	Get(ctx context.Context, shortname string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	CheckPassword(user *models.User, plain string) bool
}

// CreateUserRequest captures the fields accepted when creating a user.
type CreateUserRequest struct {
	Shortname     string
	Name          string
	URL           string
	AboutMarkdown string
	AboutHTML     string
	CSSFile       string
	JSFile        string
	Password      string
	Convert       bool
}

// UpdateUserRequest captures editable user fields. The shortname selects the
// record and cannot change. An empty Password keeps the stored hash.
type UpdateUserRequest struct {
	Shortname     string
	Name          string
	URL           string
	AboutMarkdown string
	AboutHTML     string
	CSSFile       string
	JSFile        string
	Password      string
	Convert       bool
}

// ServiceOption configures the user service.
type ServiceOption func(*service)

// WithLogger sets the service logger.
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

// WithActivity sets the recorder notified after each mutation.
func WithActivity(recorder interfaces.ActivityRecorder) ServiceOption {
	return func(s *service) {
		s.activity = recorder
	}
}

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) ServiceOption {
	return func(s *service) {
		s.hashCost = cost
	}
}

// WithPostCounter guards deletion of users that still own posts.
func WithPostCounter(counter PostCounter) ServiceOption {
	return func(s *service) {
		s.posts = counter
	}
}

// WithServiceLinkRemover removes a user's service links when they are deleted.
func WithServiceLinkRemover(remover ServiceLinkRemover) ServiceOption {
	return func(s *service) {
		s.links = remover
	}
}

type service struct {
	repo     UserRepository
	posts    PostCounter
	links    ServiceLinkRemover
	markdown interfaces.MarkdownParser
	activity interfaces.ActivityRecorder
	logger   interfaces.Logger
	hashCost int
}

// NewService constructs a user service.
func NewService(repo UserRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:     repo,
		logger:   logging.NoOp(),
		hashCost: password.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	shortname := strings.TrimSpace(req.Shortname)
	if err := validateShortname(shortname); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.ErrNameRequired
	}
	if req.Password == "" {
		return nil, models.ErrPasswordRequired
	}

	if _, err := s.repo.GetByShortname(ctx, shortname); err == nil {
		return nil, models.ErrShortnameExists
	} else if !models.IsNotFound(err) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password, s.hashCost)
	if err != nil {
		return nil, err
	}

	about, err := s.aboutHTML(req.AboutMarkdown, req.AboutHTML, req.Convert)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.User{
		Shortname:     shortname,
		Name:          name,
		URL:           strings.TrimSpace(req.URL),
		AboutMarkdown: req.AboutMarkdown,
		AboutHTML:     about,
		CSSFile:       strings.TrimSpace(req.CSSFile),
		JSFile:        strings.TrimSpace(req.JSFile),
		PasswordHash:  hashed,
	})
	if err != nil {
		s.logger.Error("user.create.failed", "shortname", shortname, "error", err)
		return nil, err
	}

	s.logger.Info("user.create.success", "shortname", shortname)
	s.record(ctx, "create", shortname)
	return created, nil
}

func (s *service) Update(ctx context.Context, req UpdateUserRequest) (*models.User, error) {
	shortname := strings.TrimSpace(req.Shortname)
	if shortname == "" {
		return nil, models.ErrShortnameRequired
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.ErrNameRequired
	}

	existing, err := s.repo.GetByShortname(ctx, shortname)
	if err != nil {
		return nil, err
	}

	about, err := s.aboutHTML(req.AboutMarkdown, req.AboutHTML, req.Convert)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.URL = strings.TrimSpace(req.URL)
	existing.AboutMarkdown = req.AboutMarkdown
	existing.AboutHTML = about
	existing.CSSFile = strings.TrimSpace(req.CSSFile)
	existing.JSFile = strings.TrimSpace(req.JSFile)
	if req.Password != "" {
		hashed, err := password.Hash(req.Password, s.hashCost)
		if err != nil {
			return nil, err
		}
		existing.PasswordHash = hashed
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		s.logger.Error("user.update.failed", "shortname", shortname, "error", err)
		return nil, err
	}

	s.logger.Info("user.update.success", "shortname", shortname, "password_changed", req.Password != "")
	s.record(ctx, "update", shortname)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, shortname string) error {
	shortname = strings.TrimSpace(shortname)
	if shortname == "" {
		return models.ErrShortnameRequired
	}
	if _, err := s.repo.GetByShortname(ctx, shortname); err != nil {
		return err
	}

	if err := s.remove(ctx, shortname); err != nil {
		if !errors.Is(err, models.ErrUserHasPosts) {
			s.logger.Error("user.delete.failed", "shortname", shortname, "error", err)
		}
		return err
	}

	s.logger.Info("user.delete.success", "shortname", shortname)
	s.record(ctx, "delete", shortname)
	return nil
}

// remove deletes the user and its service links. Repositories implementing
// CascadeDeleter do both in one transaction.
func (s *service) remove(ctx context.Context, shortname string) error {
	if cascade, ok := s.repo.(CascadeDeleter); ok {
		return cascade.DeleteCascade(ctx, shortname)
	}
	if s.posts != nil {
		count, err := s.posts.CountByUser(ctx, shortname)
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrUserHasPosts
		}
	}
	if s.links != nil {
		if err := s.links.DeleteByUser(ctx, shortname); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, shortname)
}

func (s *service) Get(ctx context.Context, shortname string) (*models.User, error) {
	return s.repo.GetByShortname(ctx, strings.TrimSpace(shortname))
}

func (s *service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

func (s *service) CheckPassword(user *models.User, plain string) bool {
	if user == nil {
		return false
	}
	return password.Compare(user.PasswordHash, plain)
}

func (s *service) aboutHTML(markdown, html string, convert bool) (string, error) {
	if !convert {
		return html, nil
	}
	if s.markdown == nil {
		return "", errors.New("users: markdown conversion requested without a parser")
	}
	rendered, err := s.markdown.Parse([]byte(markdown))
	if err != nil {
		return "", err
	}
	return string(rendered), nil
}

func (s *service) record(ctx context.Context, verb, shortname string) {
	if s.activity != nil {
		s.activity.Record(ctx, verb, "user", shortname, nil)
	}
}

func validateShortname(shortname string) error {
	if shortname == "" {
		return models.ErrShortnameRequired
	}
	if !models.IsValidSlug(shortname) {
		return models.ErrShortnameInvalid
	}
	return nil
}
