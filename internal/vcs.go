package internal

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

const CommitMessagePrefix = "journal: update entries "

type Commit struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
}

// FileChange is one entry of a scoped working-tree status. Staging and
// Worktree use the porcelain status letters (' ', 'M', 'A', 'D', 'R', '?').
type FileChange struct {
	Path     string
	Staging  byte
	Worktree byte
}

func (c FileChange) Deleted() bool {
	return c.Staging == 'D' || c.Worktree == 'D'
}

// Kind is a one-word summary used for display.
func (c FileChange) Kind() string {
	switch {
	case c.Staging == '?' || c.Worktree == '?' || c.Staging == 'A':
		return "added"
	case c.Deleted():
		return "deleted"
	case c.Staging == 'R' || c.Worktree == 'R':
		return "renamed"
	default:
		return "modified"
	}
}

// VersionControl is the subset of git the sync pipeline needs. All paths are
// slash-separated and relative to the repository root.
type VersionControl interface {
	Status(ctx context.Context, paths ...string) ([]FileChange, error)
	Stage(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) (*Commit, error)
	Push(ctx context.Context) error
	Log(ctx context.Context, limit int, paths ...string) ([]*Commit, error)
}

// CommitMessage uses the date the commit is made, not the entry date.
func CommitMessage(now time.Time) string {
	return CommitMessagePrefix + now.Format(DateLayout)
}

// HasChanges reports whether the working tree differs from HEAD under paths.
func HasChanges(ctx context.Context, vc VersionControl, paths ...string) (bool, error) {
	changes, err := vc.Status(ctx, paths...)
	if err != nil {
		return false, fmt.Errorf("status: %w", err)
	}
	return len(changes) > 0, nil
}

// Publish stages paths, commits and optionally pushes. No retries.
func Publish(ctx context.Context, vc VersionControl, message string, push bool, paths ...string) (*Commit, error) {
	if err := vc.Stage(ctx, paths...); err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}

	commit, err := vc.Commit(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if !push {
		return commit, nil
	}
	if err := vc.Push(ctx); err != nil {
		return commit, fmt.Errorf("push: %w", err)
	}
	return commit, nil
}

func inScope(p string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		s = strings.TrimSuffix(path.Clean(s), "/")
		if s == "." || p == s || strings.HasPrefix(p, s+"/") {
			return true
		}
	}
	return false
}
