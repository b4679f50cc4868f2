package main

import (
	"context"
	"fmt"
	"os"

	"github.com/4thel00z/journalsync/internal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func NewWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync after the journal has been idle",
		Long: `Watch the vault journal for changes and sync once no change has been seen for the
debounce window. Every completed sync restarts the window.`,
		Args: cobra.NoArgs,
		RunE: makeWatchRunner(a),
	}

	cmd.Flags().Duration("debounce", internal.DefaultDebounce, "Idle time after the last change before syncing")
	cmd.Flags().Bool("sync-on-start", false, "Run one sync before watching")
	cmd.Flags().Bool("no-push", false, "Commit but do not push")
	return cmd
}

func makeWatchRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		syncOnStart, _ := cmd.Flags().GetBool("sync-on-start")
		noPush, _ := cmd.Flags().GetBool("no-push")

		s, err := a.open(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debounce") {
			s.cfg.Debounce, _ = cmd.Flags().GetDuration("debounce")
		}
		if s.cfg.Debounce <= 0 {
			return fmt.Errorf("debounce must be positive, got %s", s.cfg.Debounce)
		}

		if _, err := os.Stat(s.ws.SourcePath()); os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", internal.ErrSourceMissing, s.ws.SourcePath())
		}

		ignore, err := internal.NewIgnoreMatcher(s.fs, s.ws.Source)
		if err != nil {
			return fmt.Errorf("load %s: %w", internal.IgnoreFilename, err)
		}

		syncUC, err := a.syncUseCase(s)
		if err != nil {
			return err
		}
		run := func(ctx context.Context) error {
			_, err := syncUC.Execute(ctx, internal.SyncInput{SkipPush: noPush})
			return err
		}

		if syncOnStart {
			if err := run(cmd.Context()); err != nil {
				s.log.Error().Err(err).Msg("sync failed")
			}
		}

		scheduler := internal.NewDebounceScheduler(s.cfg.Debounce, run, s.log)
		watcher := internal.NewJournalWatcher(s.ws.SourcePath(), ignore, scheduler.Notify, s.log)

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error { return watcher.Run(ctx) })
		g.Go(func() error { return scheduler.Run(ctx) })
		return g.Wait()
	}
}
