package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

func setupSyncTest(t *testing.T) (Workspace, *GitRepository, *SyncUseCase) {
	t.Helper()
	root := t.TempDir()

	_, err := git.PlainInit(root, false)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.VCS.Push = false

	ws, err := NewWorkspace(root, cfg.Source, cfg.Dest)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(ws.SourcePath(), 0755))

	repo, err := NewGitRepository(root, testGitOptions)
	require.NoError(t, err)

	uc := NewSyncUseCase(ws, osfs.New(root), repo, cfg, zerolog.Nop())
	uc.Now = func() time.Time { return testNow }
	return ws, repo, uc
}

func TestSyncUseCaseEndToEnd(t *testing.T) {
	ws, repo, uc := setupSyncTest(t)
	ctx := context.Background()

	writeFile(t, ws.Root, ws.Source+"/2025-01-01.md", "Hello")

	run, err := uc.Execute(ctx, SyncInput{})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 1, run.FilesProcessed)
	assert.Equal(t, 1, run.FilesNormalized)
	assert.Equal(t, 1, run.FilesWritten)
	assert.True(t, run.HasChanges)
	assert.True(t, run.Committed)
	assert.False(t, run.Pushed)
	require.NotNil(t, run.Commit)
	assert.Equal(t, "journal: update entries 2025-06-15", run.Commit.Message)

	want, _ := EnsureFrontmatter("2025-01-01.md", []byte("Hello"))

	dest, err := os.ReadFile(filepath.Join(ws.DestPath(), "2025-01-01.md"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(dest))
	assert.Contains(t, string(dest), `title: "Journal - 2025-01-01"`)

	src, err := os.ReadFile(filepath.Join(ws.SourcePath(), "2025-01-01.md"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(src))

	commits, err := repo.Log(ctx, 10)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "journal: update entries 2025-06-15", commits[0].Message)
}

func TestSyncUseCaseIdempotent(t *testing.T) {
	ws, repo, uc := setupSyncTest(t)
	ctx := context.Background()

	writeFile(t, ws.Root, ws.Source+"/2025-01-01.md", "Hello")
	writeFile(t, ws.Root, ws.Source+"/2025-01-02.md", "World")

	_, err := uc.Execute(ctx, SyncInput{})
	require.NoError(t, err)

	run, err := uc.Execute(ctx, SyncInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, run.FilesProcessed)
	assert.Zero(t, run.FilesWritten)
	assert.False(t, run.HasChanges)
	assert.False(t, run.Committed)
	assert.Nil(t, run.Commit)

	commits, err := repo.Log(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, commits, 1)
}

func TestSyncUseCaseRemovesStaleEntries(t *testing.T) {
	ws, repo, uc := setupSyncTest(t)
	ctx := context.Background()

	writeFile(t, ws.Root, ws.Source+"/2025-01-01.md", "one")
	writeFile(t, ws.Root, ws.Source+"/2025-01-02.md", "two")
	_, err := uc.Execute(ctx, SyncInput{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(ws.SourcePath(), "2025-01-02.md")))

	run, err := uc.Execute(ctx, SyncInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, run.StaleFilesRemoved)
	assert.True(t, run.Committed)

	assert.NoFileExists(t, filepath.Join(ws.DestPath(), "2025-01-02.md"))
	assert.FileExists(t, filepath.Join(ws.DestPath(), "2025-01-01.md"))

	changes, err := repo.Status(ctx, ws.Paths()...)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestSyncUseCaseCommitsLeftoverState(t *testing.T) {
	ws, _, uc := setupSyncTest(t)
	ctx := context.Background()

	// already mirrored by hand, never committed
	writeFile(t, ws.Root, ws.Source+"/2025-01-01.md", "---\ntitle: x\n---\n")
	writeFile(t, ws.Root, ws.Dest+"/2025-01-01.md", "---\ntitle: x\n---\n")

	run, err := uc.Execute(ctx, SyncInput{})
	require.NoError(t, err)
	assert.Zero(t, run.FilesWritten)
	assert.True(t, run.Committed)
}

func TestSyncUseCaseSourceMissing(t *testing.T) {
	ws, _, uc := setupSyncTest(t)
	require.NoError(t, os.RemoveAll(ws.SourcePath()))

	_, err := uc.Execute(context.Background(), SyncInput{})
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestSyncUseCasePushFailureIsReturned(t *testing.T) {
	ws, repo, uc := setupSyncTest(t)
	uc.push = true
	ctx := context.Background()

	writeFile(t, ws.Root, ws.Source+"/2025-01-01.md", "Hello")

	_, err := uc.Execute(ctx, SyncInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push")

	commits, err := repo.Log(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, commits, 1, "commit is kept when the push fails")
}

func TestSyncUseCaseSkipPush(t *testing.T) {
	ws, _, uc := setupSyncTest(t)
	uc.push = true

	writeFile(t, ws.Root, ws.Source+"/2025-01-01.md", "Hello")

	run, err := uc.Execute(context.Background(), SyncInput{SkipPush: true})
	require.NoError(t, err)
	assert.True(t, run.Committed)
	assert.False(t, run.Pushed)
}

func TestSyncUseCaseWithFakeVCS(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, testSource+"/2025-01-01.md", []byte("Hello"), 0644))
	ws := Workspace{Root: "/", Source: testSource, Dest: testDest}

	vc := &fakeVCS{changes: []FileChange{{Path: testDest + "/2025-01-01.md", Worktree: '?'}}}
	cfg := DefaultConfig()
	uc := NewSyncUseCase(ws, fs, vc, cfg, zerolog.Nop())
	uc.Now = func() time.Time { return testNow }

	run, err := uc.Execute(context.Background(), SyncInput{})
	require.NoError(t, err)

	assert.True(t, run.Pushed)
	assert.Equal(t, 1, vc.pushes)
	assert.Equal(t, []string{testSource, testDest}, vc.staged)
	assert.Equal(t, []string{"journal: update entries 2025-06-15"}, vc.commits)
}

func TestPlanUseCase(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, testSource+"/2025-01-01.md", []byte("Hello"), 0644))
	require.NoError(t, util.WriteFile(fs, testSource+"/2025-01-02.md", []byte("---\nt: 1\n---\n"), 0644))
	require.NoError(t, util.WriteFile(fs, testDest+"/2025-01-02.md", []byte("---\nt: 1\n---\n"), 0644))
	require.NoError(t, util.WriteFile(fs, testDest+"/old.md", []byte("bye"), 0644))
	ws := Workspace{Root: "/", Source: testSource, Dest: testDest}

	out, err := NewPlanUseCase(ws, fs).Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, out.Changes, 2)
	assert.Equal(t, "2025-01-01.md", out.Changes[0].Name)
	assert.Equal(t, ActionCreate, out.Changes[0].Action)
	assert.True(t, out.Changes[0].Normalized)
	assert.Contains(t, out.Changes[0].Diff, `+title: "Journal - 2025-01-01"`)
	assert.Contains(t, out.Changes[0].Diff, "+Hello")

	assert.Equal(t, "old.md", out.Changes[1].Name)
	assert.Equal(t, ActionDelete, out.Changes[1].Action)
	assert.Contains(t, out.Changes[1].Diff, "-bye")

	// nothing was written
	_, err = fs.Stat(testDest + "/2025-01-01.md")
	assert.True(t, os.IsNotExist(err))
}

func TestListEntriesUseCase(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, testSource+"/2025-01-01.md", []byte("Hello"), 0644))
	require.NoError(t, util.WriteFile(fs, testDest+"/2025-01-01.md",
		[]byte("---\ntitle: \"Journal - 2025-01-01\"\ndate: \"2025-01-01\"\ndescription: \"Daily journal entry\"\n---\n\nHello"), 0644))
	require.NoError(t, util.WriteFile(fs, testDest+"/2025-02-01.md",
		[]byte("---\ntitle: Custom\ndate: 2025-02-01\n---\nbody"), 0644))
	require.NoError(t, util.WriteFile(fs, testDest+"/cover.png", []byte("png"), 0644))
	ws := Workspace{Root: "/", Source: testSource, Dest: testDest}
	uc := NewListEntriesUseCase(ws, fs)

	out, err := uc.Execute(context.Background(), ListEntriesInput{})
	require.NoError(t, err)
	require.Len(t, out.Entries, 2)

	assert.Equal(t, "2025-02-01.md", out.Entries[0].Name)
	assert.Equal(t, "Custom", out.Entries[0].Title)
	assert.Equal(t, "2025-01-01", out.Entries[1].Date)
	assert.Equal(t, "Journal - 2025-01-01", out.Entries[1].Title)
	assert.Equal(t, DefaultDescription, out.Entries[1].Description)

	out, err = uc.Execute(context.Background(), ListEntriesInput{FromSource: true})
	require.NoError(t, err)
	require.Len(t, out.Entries, 1)
	assert.False(t, out.Entries[0].HasFrontmatter)
	assert.Equal(t, "2025-01-01", out.Entries[0].Date)
}

func TestListEntriesUseCaseMissingDir(t *testing.T) {
	ws := Workspace{Root: "/", Source: testSource, Dest: testDest}

	out, err := NewListEntriesUseCase(ws, memfs.New()).Execute(context.Background(), ListEntriesInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Entries)
}

func TestStatusAndLogUseCases(t *testing.T) {
	ws, repo, uc := setupSyncTest(t)
	ctx := context.Background()

	writeFile(t, ws.Root, ws.Source+"/2025-01-01.md", "Hello")

	status, err := NewStatusUseCase(ws, repo).Execute(ctx)
	require.NoError(t, err)
	require.Len(t, status.Changes, 1)
	assert.Equal(t, ws.Source+"/2025-01-01.md", status.Changes[0].Path)

	_, err = uc.Execute(ctx, SyncInput{})
	require.NoError(t, err)

	log, err := NewLogUseCase(ws, repo).Execute(ctx, LogInput{Limit: 5})
	require.NoError(t, err)
	require.Len(t, log.Commits, 1)
	assert.Equal(t, "Test", log.Commits[0].Author)
}

func TestOpenVersionControl(t *testing.T) {
	root := t.TempDir()
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)
	ws := Workspace{Root: root, Source: "a", Dest: "b"}

	vc, err := OpenVersionControl(ws, VCSConfig{Backend: BackendGoGit})
	require.NoError(t, err)
	assert.IsType(t, &GitRepository{}, vc)

	_, err = OpenVersionControl(ws, VCSConfig{Backend: "hg"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
