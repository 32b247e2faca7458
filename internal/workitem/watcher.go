package workitem

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is the delay after a filesystem event before the index
// is rebuilt, so a burst of writes triggers one rebuild.
const DebounceInterval = 200 * time.Millisecond

// Watcher rebuilds the index when work-item records change on disk behind
// the server's back (manual edits, external sync). Only meaningful for
// local storage; callers skip it for remote backends.
type Watcher struct {
	dir   string
	repo  Repository
	index *Index
}

func NewWatcher(dir string, repo Repository, index *Index) *Watcher {
	return &Watcher{
		dir:   dir,
		repo:  repo,
		index: index,
	}
}

// Start blocks until ctx is cancelled, rebuilding the index after each
// debounced batch of filesystem events under the watched directory.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}
	slog.Info("work-item watcher started", "dir", w.dir)

	var debounce *time.Timer
	var debounceC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			slog.Info("work-item watcher stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(DebounceInterval)
				debounceC = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(DebounceInterval)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("work-item watcher error", "error", err)
		case <-debounceC:
			debounce = nil
			debounceC = nil
			if err := w.index.Rebuild(ctx, w.repo); err != nil {
				slog.Error("failed to rebuild work-item index", "error", err)
				continue
			}
			slog.Debug("work-item index rebuilt after storage change")
		}
	}
}
