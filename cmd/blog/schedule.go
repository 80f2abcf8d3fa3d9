package main

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/cron"

	blog "github.com/goliatone/go-blog"
	blogcommands "github.com/goliatone/go-blog/commands"
	"github.com/goliatone/go-blog/internal/logging"
)

// startScheduler registers every cron-capable command of module (session
// purge, Markdown reconvert) and starts running them. The returned stop
// function halts the scheduler.
func startScheduler(ctx context.Context, module *blog.Module) (stop func(), jobs int, err error) {
	logger := logging.CommandsLogger(module.Container().LoggerProvider())
	scheduler := cron.NewScheduler(
		cron.WithLogger(logger),
		cron.WithErrorHandler(func(err error) {
			logger.Error("cron.job.failed", "error", err)
		}),
	)

	_, err = blogcommands.RegisterContainerCommands(module.Container(), blogcommands.RegistrationOptions{
		CronRegistrar: func(cfg command.HandlerConfig, handler any) error {
			if _, err := scheduler.AddHandler(cfg, handler); err != nil {
				return err
			}
			jobs++
			return nil
		},
	})
	if err != nil {
		return nil, 0, err
	}
	if err := scheduler.Start(ctx); err != nil {
		return nil, 0, err
	}
	return func() { _ = scheduler.Stop(context.Background()) }, jobs, nil
}
