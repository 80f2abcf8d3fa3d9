package setupcmd

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/storage"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	initDatabaseOperation  = "setup.init_database"
	createUserOperation    = "setup.create_user"
	purgeSessionsOperation = "setup.purge_sessions"
)

// DefaultPurgeSessionsCron is the schedule used when the purge handler is
// registered with a cron runner.
const DefaultPurgeSessionsCron = "@hourly"

var (
	ErrDatabaseRequired = errors.New("setup command: database is required")
	ErrSessionsRequired = errors.New("setup command: session manager is required")
)

var (
	_ command.Commander[InitDatabaseCommand]  = (*InitDatabaseHandler)(nil)
	_ command.Commander[CreateUserCommand]    = (*CreateUserHandler)(nil)
	_ command.Commander[PurgeSessionsCommand] = (*PurgeSessionsHandler)(nil)
	_ command.CronCommand                     = (*PurgeSessionsHandler)(nil)
)

// InitDatabaseHandler creates the schema and seeds the default account. It
// is safe to run repeatedly.
type InitDatabaseHandler struct {
	inner *commands.Handler[InitDatabaseCommand]
}

// NewInitDatabaseHandler binds the handler to db. hashCost is the bcrypt
// cost used for the seeded password.
func NewInitDatabaseHandler(db *bun.DB, hashCost int, logger interfaces.Logger, opts ...commands.HandlerOption[InitDatabaseCommand]) *InitDatabaseHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg InitDatabaseCommand) error {
		if db == nil {
			return ErrDatabaseRequired
		}
		if err := storage.CreateSchema(ctx, db); err != nil {
			return err
		}
		created, err := storage.SeedDefaultUser(ctx, db, msg.DefaultUser, msg.DefaultPassword, hashCost)
		if err != nil {
			return err
		}
		baseLogger.Info("setup.command.init_database.completed", "default_user", msg.DefaultUser, "seeded", created)
		return nil
	}

	handlerOpts := []commands.HandlerOption[InitDatabaseCommand]{
		commands.WithLogger[InitDatabaseCommand](baseLogger),
		commands.WithOperation[InitDatabaseCommand](initDatabaseOperation),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &InitDatabaseHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[InitDatabaseCommand].
func (h *InitDatabaseHandler) Execute(ctx context.Context, msg InitDatabaseCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CreateUserHandler adds an account through the user service.
type CreateUserHandler struct {
	inner *commands.Handler[CreateUserCommand]
}

func NewCreateUserHandler(service users.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreateUserCommand]) *CreateUserHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg CreateUserCommand) error {
		_, err := service.Create(ctx, users.CreateUserRequest{
			Shortname: msg.Shortname,
			Name:      msg.Name,
			Password:  msg.Password,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[CreateUserCommand]{
		commands.WithLogger[CreateUserCommand](baseLogger),
		commands.WithOperation[CreateUserCommand](createUserOperation),
		commands.WithMessageFields(func(msg CreateUserCommand) map[string]any {
			return map[string]any{"shortname": msg.Shortname}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateUserHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CreateUserCommand].
func (h *CreateUserHandler) Execute(ctx context.Context, msg CreateUserCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SessionPurger removes expired login sessions and reports how many went.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// PurgeSessionsHandler clears expired sessions. It carries cron metadata so
// hosts can schedule it next to the Markdown reconvert job.
type PurgeSessionsHandler struct {
	inner      *commands.Handler[PurgeSessionsCommand]
	cronConfig command.HandlerConfig
}

// PurgeOption customises the purge handler.
type PurgeOption func(*PurgeSessionsHandler)

// PurgeWithCronExpression overrides DefaultPurgeSessionsCron. Blank values are ignored.
func PurgeWithCronExpression(expr string) PurgeOption {
	return func(h *PurgeSessionsHandler) {
		if trimmed := strings.TrimSpace(expr); trimmed != "" {
			h.cronConfig.Expression = trimmed
		}
	}
}

func NewPurgeSessionsHandler(purger SessionPurger, logger interfaces.Logger, opts ...PurgeOption) *PurgeSessionsHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, _ PurgeSessionsCommand) error {
		if purger == nil {
			return ErrSessionsRequired
		}
		removed, err := purger.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		baseLogger.Info("setup.command.purge_sessions.completed", "removed", removed)
		return nil
	}

	h := &PurgeSessionsHandler{
		inner: commands.NewHandler(exec,
			commands.WithLogger[PurgeSessionsCommand](baseLogger),
			commands.WithOperation[PurgeSessionsCommand](purgeSessionsOperation),
		),
		cronConfig: command.HandlerConfig{Expression: DefaultPurgeSessionsCron},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Execute satisfies command.Commander[PurgeSessionsCommand].
func (h *PurgeSessionsHandler) Execute(ctx context.Context, msg PurgeSessionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand.
func (h *PurgeSessionsHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), PurgeSessionsCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *PurgeSessionsHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the handler to CLI integrations.
func (h *PurgeSessionsHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for the purge.
func (h *PurgeSessionsHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"sessions", "purge"},
		Group:       "setup",
		Description: "Delete expired login sessions",
	}
}
