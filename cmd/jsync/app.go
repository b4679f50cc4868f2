package main

import (
	"fmt"
	"os"
	"time"

	"github.com/4thel00z/journalsync/internal"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what tests need to override. Everything else is resolved per
// command from flags, so one binary can serve any repository.
type app struct {
	now func() time.Time
}

func newApp() *app {
	return &app{now: time.Now}
}

// session is the resolved state for one command invocation.
type session struct {
	cfg *internal.Config
	ws  internal.Workspace
	fs  billy.Filesystem
	log zerolog.Logger
}

func (a *app) open(cmd *cobra.Command) (*session, error) {
	root, err := repoRoot(cmd)
	if err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := internal.LoadConfig(root, configPath)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ws, err := internal.NewWorkspace(root, cfg.Source, cfg.Dest)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg: cfg,
		ws:  ws,
		fs:  osfs.New(ws.Root),
		log: internal.NewLogger(cfg.Log, cmd.ErrOrStderr()),
	}, nil
}

func (s *session) vcs() (internal.VersionControl, error) {
	vc, err := internal.OpenVersionControl(s.ws, s.cfg.VCS)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return vc, nil
}

func (a *app) syncUseCase(s *session) (*internal.SyncUseCase, error) {
	vc, err := s.vcs()
	if err != nil {
		return nil, err
	}

	uc := internal.NewSyncUseCase(s.ws, s.fs, vc, s.cfg, s.log)
	if a.now != nil {
		uc.Now = a.now
	}
	return uc, nil
}

func repoRoot(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("repo")
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}

	root, err := internal.FindRepoRoot(dir)
	if err != nil {
		return "", fmt.Errorf("find repository from %s: %w", dir, err)
	}
	return root, nil
}

// applyFlagOverrides lets explicitly set flags win over file and environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *internal.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source, _ = flags.GetString("source")
	}
	if flags.Changed("dest") {
		cfg.Dest, _ = flags.GetString("dest")
	}
	if flags.Changed("backend") {
		cfg.VCS.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
}
