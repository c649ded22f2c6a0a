package workspace

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches the directories of every manifest and lockfile path
// discovered in a Graph and invokes onChange whenever a Cargo.toml or
// Cargo.lock in one of them is written, created or renamed. It owns its
// fsnotify.Watcher; nothing else in the process shares it.
type Watcher struct {
	fs      *fsnotify.Watcher
	logger  *zap.Logger
	onChange func(path string)

	mu      sync.Mutex
	watched map[string]bool
}

// NewWatcher builds a Watcher backed by a new fsnotify instance and starts
// its event loop.
func NewWatcher(logger *zap.Logger, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fs: fsw, logger: logger, onChange: onChange, watched: make(map[string]bool)}
	go w.run()
	return w, nil
}

// Watch adds path's containing directory to the watch set (fsnotify watches
// directories, not individual files, so renames/atomic-saves aren't missed).
// Only the directory is recorded; the event loop reacts to any Cargo.toml or
// Cargo.lock inside a watched directory, not just path.
func (w *Watcher) Watch(path string) error {
	dir := filepath.Dir(path)

	w.mu.Lock()
	already := w.watched[dir]
	w.watched[dir] = true
	w.mu.Unlock()

	if already {
		return nil
	}
	return w.fs.Add(dir)
}

// WatchGraph subscribes to every manifest in the graph plus lockfilePath,
// if non-empty.
func (w *Watcher) WatchGraph(g *Graph, lockfilePath string) error {
	if g.Root != nil {
		if err := w.Watch(g.Root.Path); err != nil {
			return err
		}
	}
	for _, m := range g.Members {
		if err := w.Watch(m.Path); err != nil {
			return err
		}
	}
	if lockfilePath != "" {
		if err := w.Watch(lockfilePath); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			base := filepath.Base(event.Name)
			if base != "Cargo.toml" && base != "Cargo.lock" {
				continue
			}
			if w.onChange != nil {
				w.onChange(event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("workspace watcher error", zap.Error(err))
			}
		}
	}
}

// Close stops the watch loop and releases the underlying fsnotify instance.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
