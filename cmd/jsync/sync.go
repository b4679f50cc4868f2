package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/4thel00z/journalsync/internal"
	"github.com/spf13/cobra"
)

func NewSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the journal and publish changes",
		Long: `Mirror the vault journal into the site content folder, then stage, commit and push
both directories if git reports changes. With --watch, keep running and sync on a fixed interval.`,
		Args: cobra.NoArgs,
		RunE: makeSyncRunner(a),
	}

	cmd.Flags().BoolP("watch", "w", false, "Keep running and sync on a fixed interval")
	cmd.Flags().Duration("interval", internal.DefaultInterval, "Interval between syncs with --watch")
	cmd.Flags().Bool("no-push", false, "Commit but do not push")
	return cmd
}

func makeSyncRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		noPush, _ := cmd.Flags().GetBool("no-push")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := a.open(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("interval") {
			s.cfg.Interval, _ = cmd.Flags().GetDuration("interval")
		}

		syncUC, err := a.syncUseCase(s)
		if err != nil {
			return err
		}
		input := internal.SyncInput{SkipPush: noPush}

		if !watch {
			run, err := syncUC.Execute(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}
			if asJSON {
				return outputRunJSON(cmd, run)
			}
			printRun(cmd, run)
			return nil
		}

		if s.cfg.Interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", s.cfg.Interval)
		}

		runner := internal.NewIntervalRunner(s.cfg.Interval, func(ctx context.Context) error {
			_, err := syncUC.Execute(ctx, input)
			return err
		}, s.log)
		return runner.Run(cmd.Context())
	}
}

func printRun(cmd *cobra.Command, run *internal.SyncRun) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mirrored %d entries (%d written, %d removed)\n",
		run.FilesProcessed, run.FilesWritten, run.StaleFilesRemoved)

	if !run.HasChanges {
		fmt.Fprintln(out, "Nothing to commit")
		return
	}

	fmt.Fprintf(out, "[%s] %s\n", shortHash(run.Commit.Hash), run.Commit.Message)
	if run.Pushed {
		fmt.Fprintln(out, "Pushed")
	}
}

func outputRunJSON(cmd *cobra.Command, run *internal.SyncRun) error {
	data := map[string]any{
		"id":                  run.ID,
		"started_at":          run.StartedAt,
		"files_processed":     run.FilesProcessed,
		"files_normalized":    run.FilesNormalized,
		"files_written":       run.FilesWritten,
		"stale_files_removed": run.StaleFilesRemoved,
		"has_changes":         run.HasChanges,
		"committed":           run.Committed,
		"pushed":              run.Pushed,
	}
	if run.Commit != nil {
		data["commit"] = run.Commit.Hash
		data["message"] = run.Commit.Message
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
