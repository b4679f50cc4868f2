package internal

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// logFormat separates hash, author, ISO date and subject with NUL bytes.
const logFormat = "--format=%H%x00%an%x00%aI%x00%s"

// GitCLI implements VersionControl by shelling out to the git binary. It
// honours the user's credential helpers and ssh config, which go-git does not.
type GitCLI struct {
	repoRoot string
	opts     GitOptions
	bin      string
}

func NewGitCLI(root string, opts GitOptions) (*GitCLI, error) {
	bin, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git binary not found: %w", err)
	}
	if opts.Remote == "" {
		opts.Remote = DefaultRemote
	}

	g := &GitCLI{repoRoot: root, opts: opts, bin: bin}
	if _, err := g.exec(context.Background(), "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, root)
	}
	return g, nil
}

func (g *GitCLI) Status(ctx context.Context, paths ...string) ([]FileChange, error) {
	args := append([]string{"status", "--porcelain", "-z", "--untracked-files=all", "--"}, paths...)
	out, err := g.exec(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parsePorcelain(out), nil
}

// Stage runs `git add -A` limited to paths so deletions are staged too.
func (g *GitCLI) Stage(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "-A", "--"}, paths...)
	_, err := g.exec(ctx, args...)
	return err
}

func (g *GitCLI) Commit(ctx context.Context, message string) (*Commit, error) {
	args := []string{}
	if g.opts.AuthorName != "" {
		args = append(args, "-c", "user.name="+g.opts.AuthorName)
	}
	if g.opts.AuthorEmail != "" {
		args = append(args, "-c", "user.email="+g.opts.AuthorEmail)
	}
	args = append(args, "commit", "-m", message)

	if _, err := g.exec(ctx, args...); err != nil {
		return nil, err
	}

	commits, err := g.Log(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("commit not found after commit")
	}
	return commits[0], nil
}

func (g *GitCLI) Push(ctx context.Context) error {
	ref := "HEAD"
	if g.opts.Branch != "" {
		ref = "HEAD:refs/heads/" + g.opts.Branch
	}
	_, err := g.exec(ctx, "push", g.opts.Remote, ref)
	return err
}

func (g *GitCLI) Log(ctx context.Context, limit int, paths ...string) ([]*Commit, error) {
	if _, err := g.exec(ctx, "rev-parse", "--verify", "-q", "HEAD"); err != nil {
		return nil, nil
	}

	args := []string{"log", logFormat}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	out, err := g.exec(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

func (g *GitCLI) exec(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.bin, args...)
	cmd.Dir = g.repoRoot

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("git %s failed: %w\n%s",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()+string(out)))
	}
	return out, nil
}

// parsePorcelain reads `git status --porcelain -z` output: NUL-terminated
// "XY path" records with paths unquoted. Renames and copies carry the
// original path as an extra record, which is skipped.
func parsePorcelain(out []byte) []FileChange {
	var changes []FileChange
	records := strings.Split(string(out), "\x00")
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 4 {
			continue
		}

		changes = append(changes, FileChange{
			Path:     rec[3:],
			Staging:  rec[0],
			Worktree: rec[1],
		})
		if rec[0] == 'R' || rec[0] == 'C' {
			i++
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes
}

func parseLog(out []byte) []*Commit {
	var commits []*Commit
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.SplitN(line, "\x00", 4)
		if len(fields) != 4 {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, fields[2])
		commits = append(commits, &Commit{
			Hash:      fields[0],
			Author:    fields[1],
			Timestamp: ts,
			Message:   fields[3],
		})
	}
	return commits
}
