package v1

import (
	"context"
	"fmt"
	"os"

	"github.com/4thel00z/journalsync/internal"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
)

// Client runs the journal sync pipeline for one repository.
type Client struct {
	sync   *internal.SyncUseCase
	plan   *internal.PlanUseCase
	noPush bool
}

// New resolves the repository and configuration once. Options win over the
// config file and environment.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	dir := cfg.root
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}

	root, err := internal.FindRepoRoot(dir)
	if err != nil {
		return nil, err
	}

	conf, err := internal.LoadConfig(root, cfg.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.source != "" {
		conf.Source = cfg.source
	}
	if cfg.dest != "" {
		conf.Dest = cfg.dest
	}
	if cfg.backend != "" {
		conf.VCS.Backend = cfg.backend
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ws, err := internal.NewWorkspace(root, conf.Source, conf.Dest)
	if err != nil {
		return nil, err
	}

	vc, err := internal.OpenVersionControl(ws, conf.VCS)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if cfg.logger != nil {
		logger = *cfg.logger
	}

	fs := osfs.New(ws.Root)
	return &Client{
		sync:   internal.NewSyncUseCase(ws, fs, vc, conf, logger),
		plan:   internal.NewPlanUseCase(ws, fs),
		noPush: cfg.noPush,
	}, nil
}

// Sync mirrors the journal and publishes any resulting changes.
func (c *Client) Sync(ctx context.Context) (*Result, error) {
	run, err := c.sync.Execute(ctx, internal.SyncInput{SkipPush: c.noPush})
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	res := &Result{
		FilesProcessed:    run.FilesProcessed,
		FilesWritten:      run.FilesWritten,
		StaleFilesRemoved: run.StaleFilesRemoved,
		HasChanges:        run.HasChanges,
		Committed:         run.Committed,
		Pushed:            run.Pushed,
	}
	if run.Commit != nil {
		res.Commit = &Commit{
			Hash:      run.Commit.Hash,
			Message:   run.Commit.Message,
			Timestamp: run.Commit.Timestamp,
		}
	}
	return res, nil
}

// Plan reports what Sync would write, without writing.
func (c *Client) Plan(ctx context.Context) ([]Change, error) {
	out, err := c.plan.Execute(ctx)
	if err != nil {
		return nil, err
	}

	changes := make([]Change, len(out.Changes))
	for i, ch := range out.Changes {
		changes[i] = Change{
			Name:       ch.Name,
			Action:     string(ch.Action),
			Normalized: ch.Normalized,
			Diff:       ch.Diff,
		}
	}
	return changes, nil
}
