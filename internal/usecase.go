package internal

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Use case input/output DTOs

type SyncInput struct {
	SkipPush bool
}

// SyncRun records one pipeline execution. It is never persisted.
type SyncRun struct {
	ID                string
	StartedAt         time.Time
	FilesProcessed    int
	FilesNormalized   int
	FilesWritten      int
	StaleFilesRemoved int
	HasChanges        bool
	Committed         bool
	Pushed            bool
	Commit            *Commit
}

type PlanOutput struct {
	Changes []PlannedChangeOutput
}

type PlannedChangeOutput struct {
	Name       string
	Action     MirrorAction
	Normalized bool
	Diff       string
}

type StatusOutput struct {
	Changes []FileChange
}

type ListEntriesInput struct {
	FromSource bool
}

type EntryOutput struct {
	Name           string
	Date           string
	Title          string
	Description    string
	HasFrontmatter bool
}

type ListEntriesOutput struct {
	Entries []EntryOutput
}

type LogInput struct {
	Limit int
}

type CommitOutput struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
}

type LogOutput struct {
	Commits []CommitOutput
}

// OpenVersionControl picks the backend named by cfg.Backend.
func OpenVersionControl(ws Workspace, cfg VCSConfig) (VersionControl, error) {
	switch cfg.Backend {
	case BackendGoGit, "":
		return NewGitRepository(ws.Root, cfg.GitOptions())
	case BackendGit:
		return NewGitCLI(ws.Root, cfg.GitOptions())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Use cases

// SyncUseCase runs Mirror, then change detection, then Publish. Every trigger
// goes through it.
type SyncUseCase struct {
	ws            Workspace
	fs            billy.Filesystem
	vc            VersionControl
	persistSource bool
	push          bool
	log           zerolog.Logger

	Now func() time.Time
}

func NewSyncUseCase(
	ws Workspace,
	fs billy.Filesystem,
	vc VersionControl,
	cfg *Config,
	log zerolog.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		ws:            ws,
		fs:            fs,
		vc:            vc,
		persistSource: cfg.PersistSource,
		push:          cfg.VCS.Push,
		log:           log,
		Now:           time.Now,
	}
}

func (uc *SyncUseCase) Execute(ctx context.Context, input SyncInput) (*SyncRun, error) {
	run := &SyncRun{ID: uuid.NewString(), StartedAt: uc.Now()}
	log := uc.log.With().Str("run_id", run.ID).Logger()

	mirror := NewMirror(uc.fs, uc.ws.Source, uc.ws.Dest, WithPersistSource(uc.persistSource))
	report, err := mirror.Run()
	if err != nil {
		return nil, fmt.Errorf("mirror: %w", err)
	}

	run.FilesProcessed = len(report.Processed)
	run.FilesNormalized = len(report.Normalized)
	run.FilesWritten = len(report.Written)
	run.StaleFilesRemoved = len(report.Removed)

	for _, name := range report.Normalized {
		log.Info().Str("file", name).Msg("added frontmatter")
	}
	for _, name := range report.Removed {
		log.Info().Str("file", name).Msg("removed stale entry")
	}
	log.Info().
		Int("processed", run.FilesProcessed).
		Int("written", run.FilesWritten).
		Int("removed", run.StaleFilesRemoved).
		Msg("mirrored journal")

	paths := uc.ws.Paths()
	run.HasChanges, err = HasChanges(ctx, uc.vc, paths...)
	if err != nil {
		return nil, err
	}
	if !run.HasChanges {
		log.Info().Msg("no changes to commit")
		return run, nil
	}

	push := uc.push && !input.SkipPush
	commit, err := Publish(ctx, uc.vc, CommitMessage(uc.Now()), push, paths...)
	if commit != nil {
		run.Committed = true
		run.Commit = commit
		log.Info().Str("hash", shortHash(commit.Hash)).Str("message", commit.Message).Msg("committed")
	}
	if err != nil {
		return nil, err
	}

	run.Pushed = push
	if push {
		log.Info().Msg("pushed")
	}

	return run, nil
}

type PlanUseCase struct {
	ws Workspace
	fs billy.Filesystem
}

func NewPlanUseCase(ws Workspace, fs billy.Filesystem) *PlanUseCase {
	return &PlanUseCase{ws: ws, fs: fs}
}

// Execute reports what a sync would write without touching the filesystem.
// Unchanged entries are left out.
func (uc *PlanUseCase) Execute(_ context.Context) (*PlanOutput, error) {
	plan, err := NewMirror(uc.fs, uc.ws.Source, uc.ws.Dest).Plan()
	if err != nil {
		return nil, fmt.Errorf("plan mirror: %w", err)
	}

	output := &PlanOutput{}
	for _, c := range plan.Changes {
		if c.Action == ActionUnchanged && !c.Normalized {
			continue
		}
		output.Changes = append(output.Changes, PlannedChangeOutput{
			Name:       c.Name,
			Action:     c.Action,
			Normalized: c.Normalized,
			Diff:       UnifiedLines(string(c.Before), string(c.After), 2),
		})
	}

	return output, nil
}

type StatusUseCase struct {
	ws Workspace
	vc VersionControl
}

func NewStatusUseCase(ws Workspace, vc VersionControl) *StatusUseCase {
	return &StatusUseCase{ws: ws, vc: vc}
}

func (uc *StatusUseCase) Execute(ctx context.Context) (*StatusOutput, error) {
	changes, err := uc.vc.Status(ctx, uc.ws.Paths()...)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return &StatusOutput{Changes: changes}, nil
}

type ListEntriesUseCase struct {
	ws Workspace
	fs billy.Filesystem
}

func NewListEntriesUseCase(ws Workspace, fs billy.Filesystem) *ListEntriesUseCase {
	return &ListEntriesUseCase{ws: ws, fs: fs}
}

// Execute lists journal entries newest first. Entries without a readable
// header fall back to the date in their filename.
func (uc *ListEntriesUseCase) Execute(_ context.Context, input ListEntriesInput) (*ListEntriesOutput, error) {
	dir := uc.ws.Dest
	if input.FromSource {
		dir = uc.ws.Source
	}

	infos, err := uc.fs.ReadDir(dir)
	if os.IsNotExist(err) {
		return &ListEntriesOutput{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	output := &ListEntriesOutput{}
	for _, info := range infos {
		if !isEntryFile(uc.fs, dir, info) {
			continue
		}

		raw, err := util.ReadFile(uc.fs, path.Join(dir, info.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", info.Name(), err)
		}

		file := JournalFile{Name: info.Name(), Content: raw}
		entry := EntryOutput{
			Name:           file.Name,
			Date:           file.Stem(),
			HasFrontmatter: file.HasFrontmatter(),
		}
		if entry.HasFrontmatter {
			if fm, _, err := ParseFrontmatter(raw); err == nil {
				entry.Title = fm.Title
				entry.Description = fm.Description
				if fm.Date != "" {
					entry.Date = fm.Date
				}
			}
		}
		output.Entries = append(output.Entries, entry)
	}

	sort.Slice(output.Entries, func(i, j int) bool {
		return output.Entries[i].Name > output.Entries[j].Name
	})

	return output, nil
}

type LogUseCase struct {
	ws Workspace
	vc VersionControl
}

func NewLogUseCase(ws Workspace, vc VersionControl) *LogUseCase {
	return &LogUseCase{ws: ws, vc: vc}
}

func (uc *LogUseCase) Execute(ctx context.Context, input LogInput) (*LogOutput, error) {
	commits, err := uc.vc.Log(ctx, input.Limit, uc.ws.Paths()...)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	output := &LogOutput{
		Commits: make([]CommitOutput, len(commits)),
	}

	for i, c := range commits {
		output.Commits[i] = CommitOutput{
			Hash:      c.Hash,
			Message:   c.Message,
			Author:    c.Author,
			Timestamp: c.Timestamp,
		}
	}

	return output, nil
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
