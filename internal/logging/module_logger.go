package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	rootModule     = "blog"
	usersModule    = "blog.users"
	postsModule    = "blog.posts"
	tagsModule     = "blog.tags"
	servicesModule = "blog.services"
	authModule     = "blog.auth"
	adminModule    = "blog.admin"
	siteModule     = "blog.site"
	markdownModule = "blog.markdown"
	commandsModule = "blog.commands"
	activityModule = "blog.activity"
)

const (
	fieldMarkdownPath = "markdown_path"
	fieldImportAction = "import_action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// UsersLogger returns the logger namespace reserved for the users service.
func UsersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, usersModule)
}

// PostsLogger returns the logger namespace reserved for the posts service.
func PostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postsModule)
}

// TagsLogger returns the logger namespace reserved for the tags service.
func TagsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, tagsModule)
}

// ServicesLogger returns the logger namespace reserved for service links.
func ServicesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, servicesModule)
}

func AuthLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, authModule)
}

func AdminLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, adminModule)
}

func SiteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, siteModule)
}

// MarkdownLogger returns the logger namespace reserved for markdown import workflows.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

func ActivityLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, activityModule)
}

// WithMarkdownContext enriches the logger with the file path and import
// action of a markdown document. Empty values are ignored.
func WithMarkdownContext(logger interfaces.Logger, path, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldMarkdownPath] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldImportAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
