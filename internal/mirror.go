package internal

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

type MirrorAction string

const (
	ActionCreate    MirrorAction = "create"
	ActionUpdate    MirrorAction = "update"
	ActionUnchanged MirrorAction = "unchanged"
	ActionDelete    MirrorAction = "delete"
)

// PlannedChange is what a mirror pass would do to one destination file.
// Before is the current destination content, After the normalized source.
type PlannedChange struct {
	Name       string
	Action     MirrorAction
	Normalized bool
	Before     []byte
	After      []byte
}

type MirrorPlan struct {
	Changes []PlannedChange
}

// MirrorReport lists filenames touched by one mirror pass.
type MirrorReport struct {
	Processed  []string
	Normalized []string
	Written    []string
	Removed    []string
}

type Mirror struct {
	fs            billy.Filesystem
	source        string
	dest          string
	persistSource bool
}

type MirrorOption func(*Mirror)

// WithPersistSource controls whether normalized content is written back to
// the source file. Enabled by default.
func WithPersistSource(persist bool) MirrorOption {
	return func(m *Mirror) {
		m.persistSource = persist
	}
}

// NewMirror copies source/*.md onto dest. Both paths are slash-separated and
// relative to the root of fs.
func NewMirror(fs billy.Filesystem, source, dest string, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		fs:            fs,
		source:        source,
		dest:          dest,
		persistSource: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Plan computes the mirror actions without touching the filesystem.
func (m *Mirror) Plan() (*MirrorPlan, error) {
	names, err := m.sourceEntries()
	if err != nil {
		return nil, err
	}

	plan := &MirrorPlan{}
	kept := make(map[string]bool, len(names))

	for _, name := range names {
		kept[name] = true

		raw, err := util.ReadFile(m.fs, path.Join(m.source, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		content, normalized := EnsureFrontmatter(name, raw)

		change := PlannedChange{
			Name:       name,
			Normalized: normalized,
			After:      content,
		}

		existing, err := util.ReadFile(m.fs, path.Join(m.dest, name))
		switch {
		case os.IsNotExist(err):
			change.Action = ActionCreate
		case err != nil:
			return nil, fmt.Errorf("read destination %s: %w", name, err)
		case bytes.Equal(existing, content):
			change.Action = ActionUnchanged
			change.Before = existing
		default:
			change.Action = ActionUpdate
			change.Before = existing
		}

		plan.Changes = append(plan.Changes, change)
	}

	stale, err := m.staleEntries(kept)
	if err != nil {
		return nil, err
	}
	for _, name := range stale {
		existing, err := util.ReadFile(m.fs, path.Join(m.dest, name))
		if err != nil {
			return nil, fmt.Errorf("read destination %s: %w", name, err)
		}
		plan.Changes = append(plan.Changes, PlannedChange{
			Name:   name,
			Action: ActionDelete,
			Before: existing,
		})
	}

	return plan, nil
}

// Apply executes a plan. The first I/O error aborts; files written before it
// stay written.
func (m *Mirror) Apply(plan *MirrorPlan) (*MirrorReport, error) {
	if err := m.fs.MkdirAll(m.dest, 0755); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	report := &MirrorReport{}
	for _, c := range plan.Changes {
		if c.Action == ActionDelete {
			if err := m.fs.Remove(path.Join(m.dest, c.Name)); err != nil && !os.IsNotExist(err) {
				return report, fmt.Errorf("remove %s: %w", c.Name, err)
			}
			report.Removed = append(report.Removed, c.Name)
			continue
		}

		report.Processed = append(report.Processed, c.Name)

		if c.Normalized {
			report.Normalized = append(report.Normalized, c.Name)
			if m.persistSource {
				if err := util.WriteFile(m.fs, path.Join(m.source, c.Name), c.After, 0644); err != nil {
					return report, fmt.Errorf("write %s: %w", c.Name, err)
				}
			}
		}

		if c.Action == ActionUnchanged {
			continue
		}
		if err := util.WriteFile(m.fs, path.Join(m.dest, c.Name), c.After, 0644); err != nil {
			return report, fmt.Errorf("write destination %s: %w", c.Name, err)
		}
		report.Written = append(report.Written, c.Name)
	}

	return report, nil
}

func (m *Mirror) Run() (*MirrorReport, error) {
	plan, err := m.Plan()
	if err != nil {
		return nil, err
	}
	return m.Apply(plan)
}

func (m *Mirror) sourceEntries() ([]string, error) {
	infos, err := m.fs.ReadDir(m.source)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, m.source)
	}
	if err != nil {
		return nil, fmt.Errorf("list source: %w", err)
	}

	ignore, err := NewIgnoreMatcher(m.fs, m.source)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", IgnoreFilename, err)
	}

	var names []string
	for _, info := range infos {
		if !isEntryFile(m.fs, m.source, info) {
			continue
		}
		if ignore.Match(info.Name(), false) {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (m *Mirror) staleEntries(kept map[string]bool) ([]string, error) {
	infos, err := m.fs.ReadDir(m.dest)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list destination: %w", err)
	}

	var stale []string
	for _, info := range infos {
		if !isEntryFile(m.fs, m.dest, info) {
			continue
		}
		if !kept[info.Name()] {
			stale = append(stale, info.Name())
		}
	}
	sort.Strings(stale)
	return stale, nil
}

// isEntryFile reports whether info is a journal entry. Symlinks are followed;
// directories and dangling links are not entries.
func isEntryFile(fs billy.Filesystem, dir string, info os.FileInfo) bool {
	if !IsEntryName(info.Name()) {
		return false
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := fs.Stat(path.Join(dir, info.Name()))
		if err != nil {
			return false
		}
		info = target
	}
	return !info.IsDir()
}
