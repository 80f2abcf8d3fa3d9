package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/storage"
)

// app holds the module opened for a single CLI invocation.
type app struct {
	cfg    blog.Config
	db     *bun.DB
	module *blog.Module
}

func (r *app) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

var moduleBuilder = buildApp

// buildApp loads the configuration, opens the database and assembles the
// module on top of it.
func buildApp(configPath string, override func(*blog.Config)) (*app, error) {
	cfg, err := blog.LoadConfig(strings.TrimSpace(configPath))
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	db, err := storage.Open(storage.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	module, err := blog.New(cfg, di.WithBunDB(db))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialise blog module: %w", err)
	}
	return &app{cfg: cfg, db: db, module: module}, nil
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "blog",
		Short:         "Serve and administer a personal blog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML configuration file")

	cmd.AddCommand(
		newServeCmd(opts),
		newInitDBCmd(opts),
		newUserAddCmd(opts),
		newPurgeSessionsCmd(opts),
		newImportCmd(opts),
		newReconvertCmd(opts),
	)
	return cmd
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
