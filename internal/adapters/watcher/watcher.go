package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skipDirectories are never watched.
var skipDirectories = map[string]bool{
	".git":               true,
	".jj":                true,
	".hg":                true,
	".svn":               true,
	"node_modules":       true,
	domain.StitchDirName: true,
}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	events    chan ports.WatchEvent

	mu      sync.Mutex
	watched map[string]struct{}
	// files restricts events from directories outside the root to these paths.
	files map[string]struct{}
	root  string
}

// NewWatcher creates a new file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	return &Watcher{
		fsWatcher: w,
		logger:    logger,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
		watched:   make(map[string]struct{}),
		files:     make(map[string]struct{}),
	}, nil
}

// Start watches root recursively and the directories holding the extra
// files. Events stop once ctx is done.
func (w *Watcher) Start(ctx context.Context, root string, extra []string) error {
	w.mu.Lock()
	w.root = filepath.Clean(root)
	w.mu.Unlock()

	for dir := range watchRecursively(root) {
		if err := w.add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
		}
	}
	if err := w.Track(extra); err != nil {
		return err
	}

	go w.processEvents(ctx)
	return nil
}

// Track adds files outside the root whose changes should be reported.
func (w *Watcher) Track(paths []string) error {
	for _, p := range paths {
		p = filepath.Clean(p)
		if w.inRoot(p) {
			continue
		}
		w.mu.Lock()
		w.files[p] = struct{}{}
		w.mu.Unlock()

		dir := filepath.Dir(p)
		if err := w.add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
		}
	}
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = struct{}{}
	return nil
}

func (w *Watcher) inRoot(path string) bool {
	w.mu.Lock()
	root := w.root
	w.mu.Unlock()
	return root != "" && (path == root || strings.HasPrefix(path, root+string(filepath.Separator)))
}

// relevant reports whether an event on path should be delivered.
func (w *Watcher) relevant(path string) bool {
	if w.inRoot(path) {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[path]
	return ok
}

func watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			path := filepath.Clean(event.Name)
			op, ok := convertOp(event.Op)
			if !ok || !w.relevant(path) {
				continue
			}

			if op == ports.OpCreate && w.inRoot(path) {
				if info, err := os.Stat(path); err == nil && info.IsDir() && !skipDirectories[info.Name()] {
					for dir := range watchRecursively(path) {
						if err := w.add(dir); err != nil {
							w.logger.Warn("failed to watch " + dir + ": " + err.Error())
						}
					}
				}
			}

			select {
			case w.events <- ports.WatchEvent{Path: path, Operation: op}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error: " + err.Error())
		}
	}
}

func convertOp(op fsnotify.Op) (ports.WatchOp, bool) {
	switch {
	case op.Has(fsnotify.Write):
		return ports.OpWrite, true
	case op.Has(fsnotify.Create):
		return ports.OpCreate, true
	case op.Has(fsnotify.Remove):
		return ports.OpRemove, true
	case op.Has(fsnotify.Rename):
		return ports.OpRename, true
	default:
		return 0, false
	}
}
