package main

import (
	"github.com/spf13/cobra"

	setupcmd "github.com/goliatone/go-blog/internal/commands/setup"
)

func newInitDBCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create the database schema and the default account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := moduleBuilder(root.configPath, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			msg := rt.module.InitDatabaseCommand()
			if err := rt.module.InitDatabaseHandler().Execute(cmd.Context(), msg); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "database ready, default user %q\n", msg.DefaultUser)
			return nil
		},
	}
}

func newUserAddCmd(root *rootOptions) *cobra.Command {
	var msg setupcmd.CreateUserCommand

	cmd := &cobra.Command{
		Use:   "useradd",
		Short: "Add an account that can log into the admin console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := moduleBuilder(root.configPath, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.module.CreateUserHandler().Execute(cmd.Context(), msg); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "user %q created\n", msg.Shortname)
			return nil
		},
	}
	cmd.Flags().StringVar(&msg.Shortname, "shortname", "", "Login name and URL key")
	cmd.Flags().StringVar(&msg.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&msg.Password, "password", "", "Login password")
	return cmd
}

func newPurgeSessionsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired login sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := moduleBuilder(root.configPath, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.module.PurgeSessionsHandler().Execute(cmd.Context(), setupcmd.PurgeSessionsCommand{}); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "expired sessions purged\n")
			return nil
		},
	}
}
