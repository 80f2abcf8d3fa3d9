package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	blog "github.com/goliatone/go-blog"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr     string
		schedule bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the public site and the admin console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := moduleBuilder(root.configPath, func(cfg *blog.Config) {
				if trimmed := strings.TrimSpace(addr); trimmed != "" {
					cfg.Server.Addr = trimmed
				}
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if schedule {
				stopScheduler, jobs, err := startScheduler(ctx, rt.module)
				if err != nil {
					return err
				}
				defer stopScheduler()
				printf(cmd.OutOrStdout(), "scheduled %d background jobs\n", jobs)
			}

			printf(cmd.OutOrStdout(), "%s listening on %s\n", rt.cfg.BlogName, rt.cfg.Server.Addr)
			return serve(ctx, newServer(rt.cfg, rt.module.Handler()), rt.cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	cmd.Flags().BoolVar(&schedule, "cron", true, "Run session purge and Markdown reconvert on their schedules")
	return cmd
}

func newServer(cfg blog.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// serve runs srv until ctx is cancelled, then drains open requests for at most
// the configured shutdown timeout.
func serve(ctx context.Context, srv *http.Server, cfg blog.Config) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
