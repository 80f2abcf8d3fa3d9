// Package blog wires the blog services, the public site and the admin console
// into a single module.
package blog

import (
	"io/fs"
	"net/http"

	"github.com/goliatone/go-blog/internal/activity"
	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/commands"
	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
	setupcmd "github.com/goliatone/go-blog/internal/commands/setup"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/servicelinks"
	"github.com/goliatone/go-blog/internal/tags"
	"github.com/goliatone/go-blog/internal/users"
)

// UserService exports the user service contract for consumers of the blog package.
type UserService = users.Service

// PostService exports the posts service contract.
type PostService = posts.Service

// TagService exports the tags service contract.
type TagService = tags.Service

// ServiceLinkService exports the service link contract.
type ServiceLinkService = servicelinks.Service

// ActivityStore exports the activity log reader.
type ActivityStore = activity.Store

// MarkdownCommands exports the Markdown command handlers.
type MarkdownCommands = markdowncmd.HandlerSet

// Module is the top-level entry point for blog consumers.
type Module struct {
	container *di.Container
}

// New configures a Module from cfg.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Handler returns the HTTP handler serving the public site and the admin console.
func (m *Module) Handler() http.Handler {
	return m.container.Handler()
}

func (m *Module) Users() UserService {
	return m.container.UserService()
}

func (m *Module) Posts() PostService {
	return m.container.PostService()
}

func (m *Module) Tags() TagService {
	return m.container.TagService()
}

func (m *Module) ServiceLinks() ServiceLinkService {
	return m.container.ServiceLinkService()
}

// Auth returns the session manager.
func (m *Module) Auth() *auth.Manager {
	return m.container.AuthManager()
}

// Activity returns the activity log, or nil when the feature is off.
func (m *Module) Activity() ActivityStore {
	return m.container.ActivityStore()
}

// Importer returns a Markdown importer reading from fsys.
func (m *Module) Importer(fsys fs.FS) *markdown.Importer {
	return m.container.MarkdownImporter(fsys)
}

// MarkdownCommands builds the import and reconvert handlers. report may be nil.
func (m *Module) MarkdownCommands(report markdowncmd.ImportReporter) (*MarkdownCommands, error) {
	return markdowncmd.RegisterMarkdownCommands(nil, markdowncmd.Dependencies{
		Importers: m.container.MarkdownImporter,
		Posts:     m.container.PostService(),
		Users:     m.container.UserService(),
		Reporter:  report,
	}, m.container.LoggerProvider())
}

// InitDatabaseHandler returns the schema and seed handler. It needs a bun
// database supplied through di.WithBunDB.
func (m *Module) InitDatabaseHandler() *setupcmd.InitDatabaseHandler {
	cfg := m.container.Config
	return setupcmd.NewInitDatabaseHandler(m.container.BunDB(), cfg.Auth.HashCost, commands.CommandLogger(m.container.LoggerProvider(), "setup"))
}

// InitDatabaseCommand returns the init message carrying the configured
// default account.
func (m *Module) InitDatabaseCommand() setupcmd.InitDatabaseCommand {
	return setupcmd.InitDatabaseCommand{
		DefaultUser:     m.container.Config.Auth.DefaultUser,
		DefaultPassword: m.container.Config.Auth.DefaultPassword,
	}
}

// CreateUserHandler returns the handler adding an account.
func (m *Module) CreateUserHandler() *setupcmd.CreateUserHandler {
	return setupcmd.NewCreateUserHandler(m.container.UserService(), commands.CommandLogger(m.container.LoggerProvider(), "setup"))
}

// PurgeSessionsHandler returns the handler that deletes expired login sessions.
func (m *Module) PurgeSessionsHandler() *setupcmd.PurgeSessionsHandler {
	return setupcmd.NewPurgeSessionsHandler(m.container.AuthManager(), commands.CommandLogger(m.container.LoggerProvider(), "setup"))
}
