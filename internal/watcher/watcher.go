// Package watcher reports batches of file changes below a set of directories.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   string // "create", "write", "remove"
}

// DefaultDebounce is the quiet period that ends a batch of changes.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches directories for file changes with fsnotify. Events are
// collected until no new one arrives for the debounce period and then
// delivered together.
type Watcher struct {
	fsw        *fsnotify.Watcher
	extensions []string // e.g., [".ts", ".tsx"]
	files      map[string]bool
	ignored    []string
	debounce   time.Duration
	onChange   func(events []Event)
	log        *zap.SugaredLogger

	mu      sync.Mutex
	pending []Event
	timer   *time.Timer
}

// New creates a watcher over dirs and their subdirectories. Directories that
// vfs.SkipDir names, such as node_modules, are not watched.
func New(dirs []string, extensions []string, debounce time.Duration, onChange func(events []Event), log *zap.SugaredLogger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	w := &Watcher{
		fsw:        fsw,
		extensions: extensions,
		files:      map[string]bool{},
		debounce:   debounce,
		onChange:   onChange,
		log:        log,
	}
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// AddFile watches one more file regardless of its extension, such as the
// config file.
func (w *Watcher) AddFile(path string) error {
	w.mu.Lock()
	w.files[filepath.Clean(path)] = true
	w.mu.Unlock()
	// Editors replace files by rename, so the directory is watched.
	if err := w.fsw.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "watching %s", path)
	}
	return nil
}

// Ignore drops changes below dir, such as the output directory.
func (w *Watcher) Ignore(dir string) {
	w.mu.Lock()
	w.ignored = append(w.ignored, filepath.Clean(dir))
	w.mu.Unlock()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return errors.Wrapf(err, "watching %s", root)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && vfs.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return errors.Wrapf(err, "watching %s", p)
		}
		return nil
	})
}

// Watch delivers changes until ctx is done or Close is called.
func (w *Watcher) Watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warnw("cannot watch new directory", "dir", event.Name, "error", err)
			}
			return
		}
	}
	if !w.matches(event.Name) {
		return
	}
	var op string
	switch {
	case event.Has(fsnotify.Create):
		op = "create"
	case event.Has(fsnotify.Write):
		op = "write"
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = "remove"
	default:
		return
	}
	w.log.Debugw("file changed", "file", event.Name, "op", op)
	w.schedule(Event{Path: event.Name, Op: op})
}

// matches reports whether path is a watched file.
func (w *Watcher) matches(path string) bool {
	path = filepath.Clean(path)
	w.mu.Lock()
	explicit := w.files[path]
	ignored := w.ignored
	w.mu.Unlock()
	if explicit {
		return true
	}
	for _, dir := range ignored {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return false
		}
	}
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// schedule queues an event and restarts the debounce timer.
func (w *Watcher) schedule(e Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, e)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := coalesce(w.pending)
	w.pending = nil
	w.mu.Unlock()
	if len(pending) > 0 && w.onChange != nil {
		w.onChange(pending)
	}
}

// coalesce keeps one event per path, in order of first appearance. A file
// created and then written is still a create; a remove wins over anything.
func coalesce(events []Event) []Event {
	index := map[string]int{}
	var out []Event
	for _, e := range events {
		i, ok := index[e.Path]
		if !ok {
			index[e.Path] = len(out)
			out = append(out, e)
			continue
		}
		switch {
		case e.Op == "remove":
			out[i].Op = "remove"
		case out[i].Op == "remove":
			out[i].Op = e.Op
		}
	}
	return out
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
