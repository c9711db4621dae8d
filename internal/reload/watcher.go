package reload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce groups the burst of events an editor or copy produces
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads artifacts when their files change on disk
type Watcher struct {
	reloader *Reloader
	dir      string
	names    map[string]bool
	debounce time.Duration
	logger   *logrus.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher watches dir for changes to the named artifact files. The
// directory is watched rather than the files so atomic renames are seen.
func NewWatcher(reloader *Reloader, dir string, names []string, debounce time.Duration, logger *logrus.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch artifact directory %s: %w", dir, err)
	}

	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[filepath.Clean(n)] = true
	}
	return &Watcher{
		reloader: reloader,
		dir:      dir,
		names:    set,
		debounce: debounce,
		logger:   logger,
		watcher:  fw,
	}, nil
}

// Run processes file events until ctx is done, then closes the watcher
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	// nil until a relevant change arrives; each change restarts the wait
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.WithFields(logrus.Fields{
				"file": event.Name,
				"op":   event.Op.String(),
			}).Debug("Artifact file changed")
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			// errors are logged and published by the reloader
			_, _ = w.reloader.Reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("Artifact watcher error")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil {
		return false
	}
	return w.names[filepath.Clean(rel)]
}
