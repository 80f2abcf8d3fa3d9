package servicelinks

import (
	"context"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Service exposes service link use-cases.
type Service interface {
	Create(ctx context.Context, req CreateServiceRequest) (*models.Service, error)
	Update(ctx context.Context, req UpdateServiceRequest) (*models.Service, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Service, error)
	List(ctx context.Context) ([]*models.Service, error)
	ListByUser(ctx context.Context, shortname string) ([]*models.Service, error)
}

type CreateServiceRequest struct {
	Name          string
	IconFile      string
	URL           string
	AltText       string
	CSSClass      string
	UserShortname string
}

// UpdateServiceRequest replaces the fields of the link selected by ID.
type UpdateServiceRequest struct {
	ID            int64
	Name          string
	IconFile      string
	URL           string
	AltText       string
	CSSClass      string
	UserShortname string
}

// ServiceOption configures the service link service.
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

type service struct {
	repo     ServiceRepository
	users    UserLookup
	activity interfaces.ActivityRecorder
	logger   interfaces.Logger
}

// NewService constructs a service link service.
func NewService(repo ServiceRepository, users UserLookup, opts ...ServiceOption) Service {
	s := &service{repo: repo, users: users, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateServiceRequest) (*models.Service, error) {
	link := &models.Service{}
	owner, err := s.apply(ctx, link, UpdateServiceRequest{
		Name:          req.Name,
		IconFile:      req.IconFile,
		URL:           req.URL,
		AltText:       req.AltText,
		CSSClass:      req.CSSClass,
		UserShortname: req.UserShortname,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, link)
	if err != nil {
		s.logger.Error("service.create.failed", "name", link.Name, "owner", link.UserShortname, "error", err)
		return nil, err
	}
	created.User = owner
	s.logger.Info("service.create.success", "id", created.ID, "owner", created.UserShortname)
	s.record(ctx, "create", created.ID)
	return created, nil
}

func (s *service) Update(ctx context.Context, req UpdateServiceRequest) (*models.Service, error) {
	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	owner, err := s.apply(ctx, existing, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		s.logger.Error("service.update.failed", "id", req.ID, "error", err)
		return nil, err
	}
	updated.User = owner
	s.logger.Info("service.update.success", "id", req.ID)
	s.record(ctx, "update", req.ID)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("service.delete.success", "id", id)
	s.record(ctx, "delete", id)
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Service, error) {
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachOwners(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *service) List(ctx context.Context) ([]*models.Service, error) {
	links, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.attachOwners(ctx, links...); err != nil {
		return nil, err
	}
	return links, nil
}

func (s *service) ListByUser(ctx context.Context, shortname string) ([]*models.Service, error) {
	links, err := s.repo.ListByUser(ctx, strings.TrimSpace(shortname))
	if err != nil {
		return nil, err
	}
	if err := s.attachOwners(ctx, links...); err != nil {
		return nil, err
	}
	return links, nil
}

func (s *service) apply(ctx context.Context, link *models.Service, req UpdateServiceRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.ErrNameRequired
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, models.ErrURLRequired
	}
	shortname := strings.TrimSpace(req.UserShortname)
	if shortname == "" {
		return nil, models.ErrOwnerRequired
	}
	owner, err := s.users.GetByShortname(ctx, shortname)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}

	link.Name = name
	link.URL = url
	link.IconFile = strings.TrimSpace(req.IconFile)
	link.AltText = strings.TrimSpace(req.AltText)
	link.CSSClass = strings.TrimSpace(req.CSSClass)
	link.UserShortname = owner.Shortname
	return owner, nil
}

func (s *service) attachOwners(ctx context.Context, links ...*models.Service) error {
	owners := map[string]*models.User{}
	for _, link := range links {
		if link.User != nil {
			continue
		}
		owner, ok := owners[link.UserShortname]
		if !ok {
			found, err := s.users.GetByShortname(ctx, link.UserShortname)
			if err != nil && !models.IsNotFound(err) {
				return err
			}
			owner = found
			owners[link.UserShortname] = found
		}
		link.User = owner
	}
	return nil
}

func (s *service) record(ctx context.Context, verb string, id int64) {
	if s.activity != nil {
		s.activity.Record(ctx, verb, "service", strconv.FormatInt(id, 10), nil)
	}
}
