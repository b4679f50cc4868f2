package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

const (
	DefaultRemote = "origin"
	DefaultAuthor = "jsync"
	DefaultEmail  = "jsync@localhost"
)

// GitOptions configures both git backends.
type GitOptions struct {
	Remote      string
	Branch      string
	AuthorName  string
	AuthorEmail string
	Token       string
}

// GitRepository implements VersionControl in-process with go-git.
type GitRepository struct {
	repo     *git.Repository
	worktree *git.Worktree
	rootPath string
	opts     GitOptions
}

func NewGitRepository(root string, opts GitOptions) (*GitRepository, error) {
	repo, err := git.PlainOpen(root)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, root)
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	if opts.Remote == "" {
		opts.Remote = DefaultRemote
	}

	return &GitRepository{
		repo:     repo,
		worktree: worktree,
		rootPath: root,
		opts:     opts,
	}, nil
}

func (r *GitRepository) Status(ctx context.Context, paths ...string) ([]FileChange, error) {
	// go-git has no pathspec status; the whole worktree is scanned and
	// filtered below. The git backend scopes this with a pathspec.
	status, err := r.worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	var changes []FileChange
	for p, s := range status {
		if s.Staging == git.Unmodified && s.Worktree == git.Unmodified {
			continue
		}
		if !inScope(p, paths) {
			continue
		}
		changes = append(changes, FileChange{
			Path:     p,
			Staging:  byte(s.Staging),
			Worktree: byte(s.Worktree),
		})
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes, nil
}

// Stage adds every changed file under paths, removing deleted ones from the
// index.
func (r *GitRepository) Stage(ctx context.Context, paths ...string) error {
	changes, err := r.Status(ctx, paths...)
	if err != nil {
		return err
	}

	for _, c := range changes {
		switch c.Worktree {
		case byte(git.Unmodified):
			continue
		case byte(git.Deleted):
			if _, err := r.worktree.Remove(c.Path); err != nil {
				return fmt.Errorf("remove %s: %w", c.Path, err)
			}
		default:
			if _, err := r.worktree.Add(c.Path); err != nil {
				return fmt.Errorf("stage %s: %w", c.Path, err)
			}
		}
	}
	return nil
}

func (r *GitRepository) Commit(ctx context.Context, message string) (*Commit, error) {
	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author: r.signature(),
	})
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}

	return r.toCommit(commit), nil
}

func (r *GitRepository) Push(ctx context.Context) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return fmt.Errorf("cannot push from detached HEAD")
	}

	local := head.Name().Short()
	target := r.opts.Branch
	if target == "" {
		target = local
	}

	remote, err := r.repo.Remote(r.opts.Remote)
	if err != nil {
		return fmt.Errorf("get remote %s: %w", r.opts.Remote, err)
	}

	refSpec := config.RefSpec(fmt.Sprintf("%s:%s",
		plumbing.NewBranchReferenceName(local),
		plumbing.NewBranchReferenceName(target),
	))

	err = remote.PushContext(ctx, &git.PushOptions{
		RemoteName: r.opts.Remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       r.auth(remote.Config()),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

func (r *GitRepository) Log(ctx context.Context, limit int, paths ...string) ([]*Commit, error) {
	opts := &git.LogOptions{}
	if len(paths) > 0 {
		opts.PathFilter = func(p string) bool { return inScope(p, paths) }
	}

	iter, err := r.repo.Log(opts)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var commits []*Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return io.EOF
		}
		commits = append(commits, r.toCommit(c))
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return commits, nil
}

// helpers

func (r *GitRepository) signature() *object.Signature {
	name, email := r.opts.AuthorName, r.opts.AuthorEmail
	if name == "" || email == "" {
		if cfg, err := r.repo.ConfigScoped(config.GlobalScope); err == nil {
			if name == "" {
				name = cfg.User.Name
			}
			if email == "" {
				email = cfg.User.Email
			}
		}
	}
	if name == "" {
		name = DefaultAuthor
	}
	if email == "" {
		email = DefaultEmail
	}

	return &object.Signature{
		Name:  name,
		Email: email,
		When:  time.Now(),
	}
}

func (r *GitRepository) auth(remote *config.RemoteConfig) transport.AuthMethod {
	if r.opts.Token == "" || len(remote.URLs) == 0 {
		return nil
	}
	if !strings.HasPrefix(remote.URLs[0], "http://") && !strings.HasPrefix(remote.URLs[0], "https://") {
		return nil
	}
	return &http.BasicAuth{Username: DefaultAuthor, Password: r.opts.Token}
}

func (r *GitRepository) toCommit(c *object.Commit) *Commit {
	return &Commit{
		Hash:      c.Hash.String(),
		Message:   strings.TrimSpace(c.Message),
		Author:    c.Author.Name,
		Timestamp: c.Author.When,
	}
}
