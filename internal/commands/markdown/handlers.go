package markdowncmd

import (
	"context"
	"io/fs"
	"os"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	importOperation    = "markdown.import"
	reconvertOperation = "markdown.reconvert"
)

var (
	_ command.Commander[ImportMarkdownCommand]    = (*ImportMarkdownHandler)(nil)
	_ command.Commander[ReconvertMarkdownCommand] = (*ReconvertMarkdownHandler)(nil)
	_ command.CronCommand                         = (*ReconvertMarkdownHandler)(nil)
)

// ImporterFactory returns an importer reading documents from fsys.
type ImporterFactory func(fsys fs.FS) *markdown.Importer

// ImportReporter receives the outcome of an import run.
type ImportReporter func(*markdown.ImportResult)

// ImportMarkdownHandler imports a directory of Markdown documents as posts.
type ImportMarkdownHandler struct {
	inner *commands.Handler[ImportMarkdownCommand]
}

// NewImportMarkdownHandler builds the handler. report may be nil.
func NewImportMarkdownHandler(factory ImporterFactory, logger interfaces.Logger, report ImportReporter, opts ...commands.HandlerOption[ImportMarkdownCommand]) *ImportMarkdownHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg ImportMarkdownCommand) error {
		dir := strings.TrimSpace(msg.Directory)
		if _, err := os.Stat(dir); err != nil {
			return err
		}
		importer := factory(os.DirFS(dir))
		result, err := importer.ImportDirectory(ctx, ".", markdown.ImportOptions{
			Author: msg.Author,
			DryRun: msg.DryRun,
			Update: msg.Update,
		})
		if result == nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"created_count": len(result.Created),
			"updated_count": len(result.Updated),
			"skipped_count": len(result.Skipped),
			"error_count":   len(result.Errors),
			"dry_run":       msg.DryRun,
		}).Info("markdown.command.import.completed")
		if report != nil {
			report(result)
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[ImportMarkdownCommand]{
		commands.WithLogger[ImportMarkdownCommand](baseLogger),
		commands.WithOperation[ImportMarkdownCommand](importOperation),
		commands.WithMessageFields(func(msg ImportMarkdownCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.Author != "" {
				fields["author"] = msg.Author
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Update {
				fields["update"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportMarkdownHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ImportMarkdownCommand].
func (h *ImportMarkdownHandler) Execute(ctx context.Context, msg ImportMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CLIHandler exposes the handler to CLI integrations.
func (h *ImportMarkdownHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for Markdown imports.
func (h *ImportMarkdownHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"markdown", "import"},
		Group:       "markdown",
		Description: "Import a directory of Markdown files as posts",
	}
}

// DefaultReconvertCron is the schedule used when the reconvert handler is
// registered with a cron runner.
const DefaultReconvertCron = "@daily"

// ReconvertMarkdownHandler regenerates stored HTML from Markdown.
type ReconvertMarkdownHandler struct {
	inner      *commands.Handler[ReconvertMarkdownCommand]
	cronConfig command.HandlerConfig
}

// ReconvertOption customises the reconvert handler.
type ReconvertOption func(*ReconvertMarkdownHandler)

// ReconvertWithCronExpression overrides DefaultReconvertCron. Blank values are ignored.
func ReconvertWithCronExpression(expr string) ReconvertOption {
	return func(h *ReconvertMarkdownHandler) {
		if trimmed := strings.TrimSpace(expr); trimmed != "" {
			h.cronConfig.Expression = trimmed
		}
	}
}

func NewReconvertMarkdownHandler(postSvc posts.Service, userSvc users.Service, logger interfaces.Logger, opts ...ReconvertOption) *ReconvertMarkdownHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, _ ReconvertMarkdownCommand) error {
		postCount, err := reconvertPosts(ctx, postSvc)
		if err != nil {
			return err
		}
		userCount, err := reconvertUsers(ctx, userSvc)
		if err != nil {
			return err
		}
		baseLogger.Info("markdown.command.reconvert.completed", "posts", postCount, "users", userCount)
		return nil
	}

	h := &ReconvertMarkdownHandler{
		inner: commands.NewHandler(exec,
			commands.WithLogger[ReconvertMarkdownCommand](baseLogger),
			commands.WithOperation[ReconvertMarkdownCommand](reconvertOperation),
		),
		cronConfig: command.HandlerConfig{Expression: DefaultReconvertCron},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Execute satisfies command.Commander[ReconvertMarkdownCommand].
func (h *ReconvertMarkdownHandler) Execute(ctx context.Context, msg ReconvertMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand.
func (h *ReconvertMarkdownHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), ReconvertMarkdownCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *ReconvertMarkdownHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the handler to CLI integrations.
func (h *ReconvertMarkdownHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for reconvert.
func (h *ReconvertMarkdownHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"markdown", "reconvert"},
		Group:       "markdown",
		Description: "Re-render stored post and profile HTML from Markdown",
	}
}

func reconvertPosts(ctx context.Context, svc posts.Service) (int, error) {
	list, err := svc.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, post := range list {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if strings.TrimSpace(post.BodyMarkdown) == "" {
			continue
		}
		_, err := svc.Update(ctx, posts.UpdatePostRequest{
			Slug:          post.Slug,
			Date:          post.Date,
			Title:         post.Title,
			Lead:          post.Lead,
			BodyMarkdown:  post.BodyMarkdown,
			CSSFile:       post.CSSFile,
			JSFile:        post.JSFile,
			UserShortname: post.UserShortname,
			Tags:          post.TagSlugs(),
			Convert:       true,
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func reconvertUsers(ctx context.Context, svc users.Service) (int, error) {
	list, err := svc.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, user := range list {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if strings.TrimSpace(user.AboutMarkdown) == "" {
			continue
		}
		_, err := svc.Update(ctx, users.UpdateUserRequest{
			Shortname:     user.Shortname,
			Name:          user.Name,
			URL:           user.URL,
			AboutMarkdown: user.AboutMarkdown,
			CSSFile:       user.CSSFile,
			JSFile:        user.JSFile,
			Convert:       true,
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
