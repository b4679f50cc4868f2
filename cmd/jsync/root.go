package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jsync",
		Short:         "Mirror a notes-vault journal into a site and publish it with git",
		Long:          `Copies YYYY-MM-DD.md entries from the vault journal into the site content folder, adds missing frontmatter, and commits and pushes the result.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	setHelpWithExternals(rootCmd)

	if a != nil {
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default <repo>/.jsync.yaml)")
	cmd.PersistentFlags().String("repo", "", "Repository root or a directory inside it (default: current directory)")
	cmd.PersistentFlags().String("source", "", "Vault journal directory, relative to the repository root")
	cmd.PersistentFlags().String("dest", "", "Site content directory, relative to the repository root")
	cmd.PersistentFlags().String("backend", "", "VCS backend (gogit|git)")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, a *app) {
	root.AddCommand(
		NewInitCmd(a),
		NewSyncCmd(a),
		NewWatchCmd(a),
		NewStatusCmd(a),
		NewDiffCmd(a),
		NewListCmd(a),
		NewLogCmd(a),
	)
}

func setHelpWithExternals(cmd *cobra.Command) {
	defaultHelp := cmd.HelpFunc()

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		defaultHelp(c, args)
		if c == c.Root() {
			printExternalCommands(c)
		}
	})
}

func printExternalCommands(cmd *cobra.Command) {
	externals := listExternalCommands()
	if len(externals) == 0 {
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nExternal commands (jsync-*):")
	for _, name := range externals {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
}
