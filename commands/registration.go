// Package commands exposes the blog command handlers to hosts that run them
// through a registry, a dispatcher or a cron scheduler.
package commands

import (
	"errors"

	command "github.com/goliatone/go-command"

	internalcommands "github.com/goliatone/go-blog/internal/commands"
	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
	setupcmd "github.com/goliatone/go-blog/internal/commands/setup"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// ReconvertCron overrides the schedule of the Markdown reconvert handler.
	ReconvertCron string
	// PurgeSessionsCron overrides the schedule of the expired session purge.
	PurgeSessionsCron string
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterContainerCommands builds the command handlers backed by container
// and optionally registers them with registry, dispatcher and cron integrations.
// The database setup handler is only built when the container has a bun
// database. Reconvert and the session purge carry cron metadata.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	cfg := container.Config

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}

		if opts.CronRegistrar != nil {
			if cronCmd, ok := handler.(command.CronCommand); ok {
				if err := opts.CronRegistrar(cronCmd.CronOptions(), cronCmd.CronHandler()); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	// Setup commands.
	setupLogger := internalcommands.CommandLogger(provider, "setup")
	if db := container.BunDB(); db != nil {
		register(setupcmd.NewInitDatabaseHandler(db, cfg.Auth.HashCost, setupLogger))
	}
	if service := container.UserService(); service != nil {
		register(setupcmd.NewCreateUserHandler(service, setupLogger))
	}
	if manager := container.AuthManager(); manager != nil {
		register(setupcmd.NewPurgeSessionsHandler(manager, setupLogger, setupcmd.PurgeWithCronExpression(opts.PurgeSessionsCron)))
	}

	// Markdown commands.
	if container.PostService() != nil && container.UserService() != nil {
		handlerSet, err := markdowncmd.RegisterMarkdownCommands(nil, markdowncmd.Dependencies{
			Importers:     container.MarkdownImporter,
			Posts:         container.PostService(),
			Users:         container.UserService(),
			ReconvertCron: opts.ReconvertCron,
		}, provider)
		if err != nil {
			errs = errors.Join(errs, err)
		} else if handlerSet != nil {
			register(handlerSet.Import)
			register(handlerSet.Reconvert)
		}
	}

	if errs != nil && len(result.Handlers) == 0 {
		return result, errs
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure services are configured")
	}

	return result, errs
}
