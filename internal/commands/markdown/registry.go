package markdowncmd

import (
	"errors"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the Markdown command handlers.
type HandlerSet struct {
	Import    *ImportMarkdownHandler
	Reconvert *ReconvertMarkdownHandler
}

// Dependencies are the services the Markdown commands need.
type Dependencies struct {
	Importers ImporterFactory
	Posts     posts.Service
	Users     users.Service
	Reporter  ImportReporter
	// ReconvertCron overrides DefaultReconvertCron.
	ReconvertCron string
}

// RegisterMarkdownCommands builds the handlers and registers them with reg
// when it is not nil.
func RegisterMarkdownCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if deps.Importers == nil || deps.Posts == nil || deps.Users == nil {
		return nil, errors.New("markdown command registration: dependencies are incomplete")
	}

	logger := commands.CommandLogger(provider, "markdown")
	set := &HandlerSet{
		Import:    NewImportMarkdownHandler(deps.Importers, logger, deps.Reporter),
		Reconvert: NewReconvertMarkdownHandler(deps.Posts, deps.Users, logger, ReconvertWithCronExpression(deps.ReconvertCron)),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Import); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Reconvert); err != nil {
			return nil, err
		}
	}
	return set, nil
}
