package di

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/internal/activity"
	"github.com/goliatone/go-blog/internal/admin"
	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/console"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/servicelinks"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/internal/staticfiles"
	"github.com/goliatone/go-blog/internal/tags"
	"github.com/goliatone/go-blog/internal/templates"
	"github.com/goliatone/go-blog/internal/urls"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Container wires the blog dependencies. Repositories are in-memory unless a
// bun database is supplied.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	markdownParser interfaces.MarkdownParser
	now            func() time.Time
	staticFS       fs.FS

	userRepo     users.UserRepository
	postRepo     posts.PostRepository
	tagRepo      tags.TagRepository
	linkRepo     servicelinks.ServiceRepository
	sessionStore auth.SessionStore

	activityStore    activity.Store
	activityRecorder *activity.Recorder

	userSvc users.Service
	postSvc posts.Service
	tagSvc  tags.Service
	linkSvc servicelinks.Service

	authManager *auth.Manager
	urlBuilder  *urls.Builder
	templates   *templates.Engine
	catalog     *staticfiles.Catalog
	pages       *site.Pages
	site        *site.Site
	console     *admin.Console
	handler     http.Handler
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithBunDB switches every repository to bun.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the cache used by cached repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the configured logging provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithMarkdownParser overrides the goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		if parser != nil {
			c.markdownParser = parser
		}
	}
}

// WithActivityStore overrides the activity sink.
func WithActivityStore(store activity.Store) Option {
	return func(c *Container) {
		if store != nil {
			c.activityStore = store
		}
	}
}

// WithStaticFS serves static assets from fsys instead of Paths.StaticDir.
func WithStaticFS(fsys fs.FS) Option {
	return func(c *Container) {
		if fsys != nil {
			c.staticFS = fsys
		}
	}
}

// WithClock overrides the clock used by services and sessions.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cfg.Cache.DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureActivity()
	c.configureServices()
	if err := c.configureHTTP(); err != nil {
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "").Info("container.configured",
		"storage", c.storageKind(),
		"cache", c.cacheService != nil,
		"activity", c.activityStore != nil,
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = console.NewProvider(console.Options{
			MinLevel: console.ParseLevel(c.Config.Logging.Level),
		})
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		c.userRepo = users.NewBunRepository(c.bunDB)
		c.postRepo = posts.NewBunRepository(c.bunDB)
		c.linkRepo = servicelinks.NewBunRepository(c.bunDB)
		c.tagRepo = tags.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.sessionStore = auth.NewBunSessionStoreWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}

	c.userRepo = users.NewMemoryRepository()
	c.postRepo = posts.NewMemoryRepository()
	c.tagRepo = tags.NewMemoryRepository()
	c.linkRepo = servicelinks.NewMemoryRepository()
	c.sessionStore = auth.NewMemorySessionStore()
}

func (c *Container) configureActivity() {
	if !c.Config.Features.Activity {
		c.activityStore = nil
		return
	}
	if c.activityStore == nil {
		if c.bunDB != nil {
			c.activityStore = activity.NewBunSink(c.bunDB)
		} else {
			c.activityStore = activity.NewMemorySink()
		}
	}
	c.activityRecorder = activity.NewRecorder(c.activityStore,
		activity.WithClock(c.now),
		activity.WithLogger(logging.ActivityLogger(c.loggerProvider)),
	)
}

func (c *Container) configureServices() {
	if c.markdownParser == nil {
		parser := c.Config.Markdown.Parser
		c.markdownParser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
			Extensions: parser.Extensions,
			Sanitize:   parser.Sanitize,
			HardWraps:  parser.HardWraps,
			SafeMode:   parser.SafeMode,
		})
	}

	userOpts := []users.ServiceOption{
		users.WithLogger(logging.UsersLogger(c.loggerProvider)),
		users.WithMarkdown(c.markdownParser),
		users.WithPostCounter(c.postRepo),
		users.WithServiceLinkRemover(c.linkRepo),
	}
	postOpts := []posts.ServiceOption{
		posts.WithLogger(logging.PostsLogger(c.loggerProvider)),
		posts.WithMarkdown(c.markdownParser),
		posts.WithClock(c.now),
	}
	tagOpts := []tags.ServiceOption{
		tags.WithLogger(logging.TagsLogger(c.loggerProvider)),
		tags.WithPostDetacher(c.postRepo),
	}
	linkOpts := []servicelinks.ServiceOption{
		servicelinks.WithLogger(logging.ServicesLogger(c.loggerProvider)),
	}
	if cost := c.Config.Auth.HashCost; cost > 0 {
		userOpts = append(userOpts, users.WithHashCost(cost))
	}
	if c.activityRecorder != nil {
		userOpts = append(userOpts, users.WithActivity(c.activityRecorder))
		postOpts = append(postOpts, posts.WithActivity(c.activityRecorder))
		tagOpts = append(tagOpts, tags.WithActivity(c.activityRecorder))
		linkOpts = append(linkOpts, servicelinks.WithActivity(c.activityRecorder))
	}

	c.userSvc = users.NewService(c.userRepo, userOpts...)
	c.postSvc = posts.NewService(c.postRepo, c.userRepo, c.tagRepo, postOpts...)
	c.tagSvc = tags.NewService(c.tagRepo, tagOpts...)
	c.linkSvc = servicelinks.NewService(c.linkRepo, c.userRepo, linkOpts...)

	c.authManager = auth.NewManager(c.userSvc, c.sessionStore,
		auth.WithConfig(auth.Config{
			CookieName:   c.Config.Auth.CookieName,
			SessionTTL:   c.Config.Auth.SessionTTL,
			RememberTTL:  c.Config.Auth.RememberTTL,
			SecureCookie: c.Config.Auth.SecureCookie,
		}),
		auth.WithClock(c.now),
		auth.WithLogger(logging.AuthLogger(c.loggerProvider)),
	)
}

func (c *Container) configureHTTP() error {
	builder, err := urls.New(c.Config.BaseURL)
	if err != nil {
		return fmt.Errorf("di: routes: %w", err)
	}
	c.urlBuilder = builder

	engine, err := templates.New(templates.Config{Dir: c.Config.Paths.TemplateDir})
	if err != nil {
		return err
	}
	c.templates = engine

	if c.staticFS == nil {
		c.staticFS = os.DirFS(c.Config.Paths.StaticDir)
	}
	c.catalog = staticfiles.NewCatalogFS(c.staticFS)

	staticURL := strings.TrimRight(strings.TrimSpace(c.Config.BaseURL), "/") + site.DefaultStaticPrefix
	if err := c.templates.GlobalContext(map[string]any{
		"blog_name":  c.Config.BlogName,
		"static_url": staticURL,
		"url":        c.urlBuilder.Path,
	}); err != nil {
		return err
	}

	siteLogger := logging.SiteLogger(c.loggerProvider)
	c.pages = site.NewPages(site.PagesConfig{
		Templates:  c.templates,
		Users:      c.userSvc,
		Tags:       c.tagSvc,
		Posts:      c.postSvc,
		AdminEmail: c.Config.AdminEmail,
		Logger:     siteLogger,
	})
	c.site = site.New(site.Dependencies{
		Pages: c.pages,
		Users: c.userSvc,
		Posts: c.postSvc,
		Tags:  c.tagSvc,
		Links: c.linkSvc,
		Auth:  c.authManager,
		URLs:  c.urlBuilder,
	},
		site.WithStatic(site.DefaultStaticPrefix, c.catalog.Handler(site.DefaultStaticPrefix)),
		site.WithLogger(siteLogger),
	)

	consoleOpts := []admin.Option{admin.WithLogger(logging.AdminLogger(c.loggerProvider))}
	if c.activityStore != nil {
		consoleOpts = append(consoleOpts, admin.WithActivity(c.activityStore))
	}
	c.console = admin.New(admin.Dependencies{
		Pages: c.pages,
		Auth:  c.authManager,
		URLs:  c.urlBuilder,
		Views: admin.DefaultViews(admin.Sources{
			Users:   c.userSvc,
			Posts:   c.postSvc,
			Tags:    c.tagSvc,
			Links:   c.linkSvc,
			Catalog: c.catalog,
			Now:     c.now,
		}),
	}, consoleOpts...)

	mux := http.NewServeMux()
	c.site.Register(mux)
	c.console.Register(mux)
	c.handler = c.pages.Recover(c.authManager.Middleware(mux))
	return nil
}

func (c *Container) storageKind() string {
	if c.bunDB != nil {
		return "bun"
	}
	return "memory"
}

// Handler returns the HTTP handler serving the site and the admin console.
func (c *Container) Handler() http.Handler { return c.handler }

func (c *Container) BunDB() *bun.DB { return c.bunDB }

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) MarkdownParser() interfaces.MarkdownParser { return c.markdownParser }

func (c *Container) UserService() users.Service { return c.userSvc }

func (c *Container) PostService() posts.Service { return c.postSvc }

func (c *Container) TagService() tags.Service { return c.tagSvc }

func (c *Container) ServiceLinkService() servicelinks.Service { return c.linkSvc }

func (c *Container) AuthManager() *auth.Manager { return c.authManager }

func (c *Container) URLs() *urls.Builder { return c.urlBuilder }

func (c *Container) Templates() *templates.Engine { return c.templates }

// ActivityStore returns the activity sink, nil when the feature is off.
func (c *Container) ActivityStore() activity.Store { return c.activityStore }

// MarkdownImporter returns an importer reading documents from fsys.
func (c *Container) MarkdownImporter(fsys fs.FS) *markdown.Importer {
	return markdown.NewImporter(markdown.ImporterConfig{
		Loader: markdown.NewLoader(fsys, markdown.LoaderConfig{
			Pattern:   c.Config.Markdown.Pattern,
			Recursive: c.Config.Markdown.Recursive,
		}),
		Posts:  c.postSvc,
		Tags:   c.tagSvc,
		Logger: logging.MarkdownLogger(c.loggerProvider),
	})
}
