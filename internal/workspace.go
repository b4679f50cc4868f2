package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace locates the journal directories inside a git repository.
type Workspace struct {
	Root   string // repository root, absolute
	Source string // vault journal dir, slash-separated, relative to Root
	Dest   string // site content dir, slash-separated, relative to Root
}

func (w Workspace) SourcePath() string {
	return filepath.Join(w.Root, filepath.FromSlash(w.Source))
}

func (w Workspace) DestPath() string {
	return filepath.Join(w.Root, filepath.FromSlash(w.Dest))
}

func (w Workspace) ConfigPath() string {
	return filepath.Join(w.Root, ConfigFilename)
}

// Paths are the only paths the pipeline ever stages or inspects.
func (w Workspace) Paths() []string {
	return []string{w.Source, w.Dest}
}

// NewWorkspace resolves source and dest against root. Relative paths are
// taken relative to root; absolute ones must lie inside it.
func NewWorkspace(root, source, dest string) (Workspace, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Workspace{}, fmt.Errorf("resolve root: %w", err)
	}

	src, err := relativeTo(absRoot, source)
	if err != nil {
		return Workspace{}, fmt.Errorf("source: %w", err)
	}
	dst, err := relativeTo(absRoot, dest)
	if err != nil {
		return Workspace{}, fmt.Errorf("dest: %w", err)
	}

	return Workspace{Root: absRoot, Source: src, Dest: dst}, nil
}

func relativeTo(root, p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}

	rel, err := filepath.Rel(root, filepath.Clean(p))
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRepository, p)
	}
	return filepath.ToSlash(rel), nil
}

// FindRepoRoot walks up from dir to the first directory holding .git, which
// may be a directory or a worktree file.
func FindRepoRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotRepository
		}
		dir = parent
	}
}
