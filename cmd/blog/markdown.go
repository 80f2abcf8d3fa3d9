package main

import (
	"strings"

	"github.com/spf13/cobra"

	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
	"github.com/goliatone/go-blog/internal/markdown"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var msg markdowncmd.ImportMarkdownCommand

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a directory of Markdown files as posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := moduleBuilder(root.configPath, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if strings.TrimSpace(msg.Directory) == "" {
				msg.Directory = rt.cfg.Paths.ContentDir
			}

			out := cmd.OutOrStdout()
			handlers, err := rt.module.MarkdownCommands(func(result *markdown.ImportResult) {
				prefix := ""
				if msg.DryRun {
					prefix = "dry run: "
				}
				printf(out, "%screated %d, updated %d, skipped %d\n", prefix, len(result.Created), len(result.Updated), len(result.Skipped))
				for _, failure := range result.Errors {
					printf(out, "  error: %v\n", failure)
				}
			})
			if err != nil {
				return err
			}
			return handlers.Import.Execute(cmd.Context(), msg)
		},
	}
	cmd.Flags().StringVar(&msg.Directory, "dir", "", "Directory to import, defaults to paths.content_dir")
	cmd.Flags().StringVar(&msg.Author, "author", "", "Author shortname for documents without one")
	cmd.Flags().BoolVar(&msg.DryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&msg.Update, "update", false, "Overwrite posts that already exist")
	return cmd
}

func newReconvertCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconvert",
		Short: "Re-render stored post and profile HTML from Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := moduleBuilder(root.configPath, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			handlers, err := rt.module.MarkdownCommands(nil)
			if err != nil {
				return err
			}
			if err := handlers.Reconvert.Execute(cmd.Context(), markdowncmd.ReconvertMarkdownCommand{}); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "markdown reconverted\n")
			return nil
		},
	}
}
