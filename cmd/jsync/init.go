package main

import (
	"fmt"
	"os"

	"github.com/4thel00z/journalsync/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration",
		Long:  `Write .jsync.yaml at the repository root and create the journal directories.`,
		Args:  cobra.NoArgs,
		RunE:  makeInitRunner(a),
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	return cmd
}

func makeInitRunner(_ *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		root, err := repoRoot(cmd)
		if err != nil {
			return err
		}

		cfg := internal.DefaultConfig()
		applyFlagOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		ws, err := internal.NewWorkspace(root, cfg.Source, cfg.Dest)
		if err != nil {
			return err
		}

		path := ws.ConfigPath()
		if cmd.Flags().Changed("config") {
			path, _ = cmd.Flags().GetString("config")
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("already initialized at %s (use --force to overwrite)", path)
		}

		for _, dir := range []string{ws.SourcePath(), ws.DestPath()} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}

		if err := internal.SaveConfig(path, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized jsync at %s\n", path)
		return nil
	}
}
