package internal

import (
	"bytes"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotRepository     = errors.New("not a git repository")
	ErrOutsideRepository = errors.New("path is outside the repository")
	ErrUnknownBackend    = errors.New("unknown vcs backend")
	ErrSourceMissing     = errors.New("source directory does not exist")
)

const (
	EntryExt   = ".md"
	DateLayout = "2006-01-02"
)

// JournalFile is a single journal entry named YYYY-MM-DD.md.
type JournalFile struct {
	Name    string
	Content []byte
}

// IsEntryName reports whether name carries the exact, case-sensitive .md suffix.
func IsEntryName(name string) bool {
	return strings.HasSuffix(name, EntryExt)
}

// Stem returns the filename without its .md suffix. For well-formed entries
// this is the entry date.
func (f JournalFile) Stem() string {
	return strings.TrimSuffix(f.Name, EntryExt)
}

func (f JournalFile) HasFrontmatter() bool {
	return bytes.HasPrefix(f.Content, []byte(FrontmatterDelimiter))
}

// Date parses the filename stem. ok is false for names that are not a date.
func (f JournalFile) Date() (time.Time, bool) {
	t, err := time.Parse(DateLayout, f.Stem())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
