package internal

import (
	"bufio"
	"bytes"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFilename lives in the source directory and uses gitignore syntax.
const IgnoreFilename = ".journalignore"

type IgnoreMatcher struct {
	patterns []gitignore.Pattern
}

// NewIgnoreMatcher loads dir/.journalignore from fs. A missing file yields a
// matcher that ignores nothing.
func NewIgnoreMatcher(fs billy.Filesystem, dir string) (*IgnoreMatcher, error) {
	data, err := util.ReadFile(fs, path.Join(dir, IgnoreFilename))
	if os.IsNotExist(err) {
		return &IgnoreMatcher{}, nil
	}
	if err != nil {
		return nil, err
	}

	patterns, err := parseIgnorePatterns(data)
	if err != nil {
		return nil, err
	}
	return &IgnoreMatcher{patterns: patterns}, nil
}

// Match reports whether the slash-separated name, relative to the source
// directory, is excluded.
func (m *IgnoreMatcher) Match(name string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	parts := strings.Split(path.Clean(name), "/")

	// later patterns win, like git
	for i := len(m.patterns) - 1; i >= 0; i-- {
		switch m.patterns[i].Match(parts, isDir) {
		case gitignore.Exclude:
			return true
		case gitignore.Include:
			return false
		}
	}
	return false
}

func parseIgnorePatterns(data []byte) ([]gitignore.Pattern, error) {
	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(bytes.NewReader(data))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}
