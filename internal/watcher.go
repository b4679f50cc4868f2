package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// JournalWatcher forwards relevant filesystem events under the source
// directory to a notify callback. Only the top level is watched.
type JournalWatcher struct {
	dir    string
	ignore *IgnoreMatcher
	notify func()
	log    zerolog.Logger
}

func NewJournalWatcher(dir string, ignore *IgnoreMatcher, notify func(), log zerolog.Logger) *JournalWatcher {
	return &JournalWatcher{dir: dir, ignore: ignore, notify: notify, log: log}
}

// Run blocks until ctx is cancelled or the watcher fails to start.
func (w *JournalWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.log.Info().Str("dir", w.dir).Msg("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(event, w.ignore) {
				continue
			}
			w.log.Debug().Str("file", filepath.Base(event.Name)).Str("op", event.Op.String()).Msg("change")
			w.notify()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func shouldIgnoreEvent(event fsnotify.Event, ignore *IgnoreMatcher) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return true
	}

	return ignore.Match(base, false)
}
