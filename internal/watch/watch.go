// Package watch reports submission changes in a workspace directory.
package watch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"ethixguard/internal/workspace"
)

// Op is the kind of change seen on a submission file.
type Op int

const (
	Created Op = iota
	Modified
)

func (o Op) String() string {
	if o == Created {
		return "created"
	}
	return "modified"
}

// Event names a project whose <project>.yaml was created or written.
type Event struct {
	Project string
	Path    string
	Op      Op
}

// Watcher wraps an fsnotify watcher. The workspace directory is watched
// non-recursively, so report writes under <project>/ never produce events.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// New creates a watcher. A nil logger discards watcher errors.
func New(logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{watcher: w, logger: logger}, nil
}

// Watch starts monitoring dir and emits an Event per submission change.
// The channel is closed when ctx is done or the watcher is stopped.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				project, ok := workspace.ProjectName(event.Name)
				if !ok {
					continue
				}

				var op Op
				switch {
				case event.Has(fsnotify.Create):
					op = Created
				case event.Has(fsnotify.Write):
					op = Modified
				default:
					continue
				}

				select {
				case events <- Event{Project: project, Path: event.Name, Op: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watcher error", zap.String("dir", dir), zap.Error(err))
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
