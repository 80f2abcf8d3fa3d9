package site

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/servicelinks"
	"github.com/goliatone/go-blog/internal/tags"
	"github.com/goliatone/go-blog/internal/urls"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DefaultStaticPrefix is where the static directory is mounted.
const DefaultStaticPrefix = "/static/"

// Site registers the public routes.
type Site struct {
	pages        *Pages
	users        users.Service
	posts        posts.Service
	tags         tags.Service
	links        servicelinks.Service
	auth         *auth.Manager
	urls         *urls.Builder
	static       http.Handler
	staticPrefix string
	latest       int
	logger       interfaces.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithStatic mounts handler under prefix.
func WithStatic(prefix string, handler http.Handler) Option {
	return func(s *Site) {
		if handler == nil {
			return
		}
		s.static = handler
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.staticPrefix = "/" + strings.Trim(trimmed, "/") + "/"
		}
	}
}

// WithLatestLimit sets how many posts the index shows.
func WithLatestLimit(n int) Option {
	return func(s *Site) {
		if n > 0 {
			s.latest = n
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Site) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Dependencies are the services the public pages read from.
type Dependencies struct {
	Pages *Pages
	Users users.Service
	Posts posts.Service
	Tags  tags.Service
	Links servicelinks.Service
	Auth  *auth.Manager
	URLs  *urls.Builder
}

// New returns the public site.
func New(deps Dependencies, opts ...Option) *Site {
	s := &Site{
		pages:        deps.Pages,
		users:        deps.Users,
		posts:        deps.Posts,
		tags:         deps.Tags,
		links:        deps.Links,
		auth:         deps.Auth,
		urls:         deps.URLs,
		staticPrefix: DefaultStaticPrefix,
		latest:       posts.DefaultLatestLimit,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register attaches the public routes to mux.
func (s *Site) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /about", s.about)
	mux.HandleFunc("GET /profile/{name}", s.profile)
	mux.HandleFunc("GET /user/{name}", s.userPosts)
	mux.HandleFunc("GET /post/{slug}", s.post)
	mux.HandleFunc("GET /tag/{slug}", s.tagPosts)
	mux.HandleFunc("GET /login", s.loginForm)
	mux.HandleFunc("POST /login", s.login)
	mux.Handle("GET /logout", s.auth.RequireUser(http.HandlerFunc(s.logout)))
	if s.static != nil {
		mux.Handle("GET "+s.staticPrefix, s.static)
	}
	mux.HandleFunc("/", s.pages.NotFound)
}

func (s *Site) index(w http.ResponseWriter, r *http.Request) {
	latest, err := s.posts.Latest(r.Context(), s.latest)
	if err != nil {
		s.pages.Error(w, r, err)
		return
	}
	s.pages.Render(w, r, http.StatusOK, "latest_posts.html", map[string]any{"latest_posts": latest})
}

func (s *Site) about(w http.ResponseWriter, r *http.Request) {
	s.pages.Render(w, r, http.StatusOK, "about.html", nil)
}

func (s *Site) profile(w http.ResponseWriter, r *http.Request) {
	user, err := s.loadUser(r, r.PathValue("name"))
	if err != nil {
		s.pages.Error(w, r, err)
		return
	}
	s.pages.Render(w, r, http.StatusOK, "profile.html", map[string]any{"user": user})
}

func (s *Site) userPosts(w http.ResponseWriter, r *http.Request) {
	user, err := s.loadUser(r, r.PathValue("name"))
	if err != nil {
		s.pages.Error(w, r, err)
		return
	}
	list, err := s.posts.ListByUser(r.Context(), user.Shortname)
	if err != nil {
		s.pages.Error(w, r, err)
		return
	}
	s.pages.Render(w, r, http.StatusOK, "user_posts.html", map[string]any{
		"user":       user,
		"user_posts": list,
	})
}

func (s *Site) post(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.pages.Error(w, r, err)
		return
	}
	user, err := s.loadUser(r, post.UserShortname)
	if err != nil {
		s.pages.Error(w, r, err)
		return
	}
	s.pages.Render(w, r, http.StatusOK, "post.html", map[string]any{
		"post":     post,
		"user":     user,
		"services": user.Services,
	})
}

func (s *Site) tagPosts(w http.ResponseWriter, r *http.Request) {
	tag, err := s.tags.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.pages.Error(w, r, err)
		return
	}
	list, err := s.posts.ListByTag(r.Context(), tag.Slug)
	if err != nil {
		s.pages.Error(w, r, err)
		return
	}
	s.pages.Render(w, r, http.StatusOK, "tag_posts.html", map[string]any{
		"tag":       tag,
		"tag_posts": list,
	})
}

// loadUser fetches a user with their service links attached.
func (s *Site) loadUser(r *http.Request, shortname string) (*models.User, error) {
	user, err := s.users.Get(r.Context(), shortname)
	if err != nil {
		return nil, err
	}
	if s.links != nil {
		links, err := s.links.ListByUser(r.Context(), user.Shortname)
		if err != nil {
			return nil, err
		}
		user.Services = links
	}
	return user, nil
}
