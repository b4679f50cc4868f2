package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVCS records calls and fails on demand.
type fakeVCS struct {
	changes   []FileChange
	staged    []string
	commits   []string
	pushes    int
	statusErr error
	commitErr error
	pushErr   error
}

func (f *fakeVCS) Status(_ context.Context, _ ...string) ([]FileChange, error) {
	return f.changes, f.statusErr
}

func (f *fakeVCS) Stage(_ context.Context, paths ...string) error {
	f.staged = append(f.staged, paths...)
	return nil
}

func (f *fakeVCS) Commit(_ context.Context, message string) (*Commit, error) {
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	f.commits = append(f.commits, message)
	f.changes = nil
	return &Commit{Hash: "0123456789abcdef", Message: message}, nil
}

func (f *fakeVCS) Push(_ context.Context) error {
	f.pushes++
	return f.pushErr
}

func (f *fakeVCS) Log(_ context.Context, _ int, _ ...string) ([]*Commit, error) {
	return nil, nil
}

func TestCommitMessage(t *testing.T) {
	now := time.Date(2025, 8, 25, 23, 59, 0, 0, time.Local)
	assert.Equal(t, "journal: update entries 2025-08-25", CommitMessage(now))
}

func TestPublishStagesOnlyGivenPaths(t *testing.T) {
	vc := &fakeVCS{}

	commit, err := Publish(context.Background(), vc, "msg", true, "a", "b")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, vc.staged)
	assert.Equal(t, []string{"msg"}, vc.commits)
	assert.Equal(t, 1, vc.pushes)
	assert.Equal(t, "msg", commit.Message)
}

func TestPublishWithoutPush(t *testing.T) {
	vc := &fakeVCS{}

	_, err := Publish(context.Background(), vc, "msg", false, "a")
	require.NoError(t, err)
	assert.Zero(t, vc.pushes)
}

func TestPublishErrors(t *testing.T) {
	vc := &fakeVCS{commitErr: errors.New("nothing to commit")}
	_, err := Publish(context.Background(), vc, "msg", true, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit:")
	assert.Zero(t, vc.pushes)

	vc = &fakeVCS{pushErr: errors.New("rejected")}
	commit, err := Publish(context.Background(), vc, "msg", true, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push: rejected")
	assert.NotNil(t, commit)
}

func TestHasChangesPropagatesErrors(t *testing.T) {
	_, err := HasChanges(context.Background(), &fakeVCS{statusErr: assert.AnError}, "a")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestInScope(t *testing.T) {
	tests := []struct {
		path   string
		scopes []string
		want   bool
	}{
		{"journal/a.md", nil, true},
		{"journal/a.md", []string{"journal"}, true},
		{"journal/a.md", []string{"journal/"}, true},
		{"journal", []string{"journal"}, true},
		{"journalism/a.md", []string{"journal"}, false},
		{"src/content/journal/a.md", []string{"obsidian/journal", "src/content/journal"}, true},
		{"README.md", []string{"obsidian/journal", "src/content/journal"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, inScope(tt.path, tt.scopes))
		})
	}
}
