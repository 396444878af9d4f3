// Package watch regenerates on changes of the project file or of the
// template directory.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is the quiet period after which accumulated changes are
// reported.
const DefaultDelay = 100 * time.Millisecond

// Watcher monitors files and directories and reports changes in batches.
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	log       *zap.Logger
	mu        sync.Mutex
	roots     []string // watched directory trees
	files     map[string]struct{}
	stop      chan struct{}
	wg        sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger of the watcher.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.debouncer.delay = d }
}

// New returns a watcher calling onChange with the sorted paths changed
// during each burst of activity. Errors returned by onChange are logged.
func New(onChange func(files []string) error, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w := &Watcher{
		watcher:   fw,
		debouncer: NewDebouncer(DefaultDelay),
		log:       zap.NewNop(),
		files:     make(map[string]struct{}),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer.SetCallback(func(files []string) {
		if err := onChange(files); err != nil {
			w.log.Error("handle changes", zap.Strings("files", files), zap.Error(err))
		}
	})
	return w, nil
}

// Add watches path. A directory is watched with all its subdirectories.
func (w *Watcher) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	path = filepath.Clean(path)
	w.mu.Lock()
	if info.IsDir() {
		w.roots = append(w.roots, path)
	} else {
		w.files[path] = struct{}{}
	}
	w.mu.Unlock()
	if !info.IsDir() {
		// Editors replace files on save: watch the parent and filter.
		return w.watch(filepath.Dir(path))
	}
	return w.walk(path)
}

func (w *Watcher) walk(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && hidden(p) {
				return filepath.SkipDir
			}
			return w.watch(p)
		}
		return nil
	})
}

func (w *Watcher) watch(dir string) error {
	if slices.Contains(w.watcher.WatchList(), dir) {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	w.log.Debug("watching directory", zap.String("dir", dir))
	return nil
}

// Start begins watching in the background.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop stops the watcher. Pending changes are dropped.
func (w *Watcher) Stop() error {
	select {
	case <-w.stop:
		return nil
	default:
		close(w.stop)
	}
	w.wg.Wait()
	w.debouncer.Stop()
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if hidden(ev.Name) || !w.tracked(ev.Name) || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.walk(ev.Name); err != nil {
						w.log.Warn("watch new directory", zap.Error(err))
					}
					continue
				}
			}
			w.log.Debug("file changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			w.debouncer.Add(ev.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Error("watch", zap.Error(err))
			}
		case <-w.stop:
			return
		}
	}
}

// tracked reports whether path is a watched file or lies in a watched
// directory tree.
func (w *Watcher) tracked(path string) bool {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, root := range w.roots {
		if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
			return true
		}
	}
	return false
}

// hidden reports whether the base name starts with a dot or ends with a
// tilde, as editor swap and backup files do.
func hidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}

// Debouncer collects values and reports them once no value was added for
// the configured delay.
type Debouncer struct {
	delay    time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	files    map[string]struct{}
	callback func([]string)
	stopped  bool
}

// NewDebouncer returns a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay: delay,
		files: make(map[string]struct{}),
	}
}

// SetCallback sets the function receiving the accumulated values.
func (d *Debouncer) SetCallback(f func([]string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callback = f
}

// Add records file and restarts the delay.
func (d *Debouncer) Add(file string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.files[file] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.files) == 0 {
		d.mu.Unlock()
		return
	}
	files := make([]string, 0, len(d.files))
	for f := range d.files {
		files = append(files, f)
	}
	d.files = make(map[string]struct{})
	cb := d.callback
	d.mu.Unlock()

	slices.Sort(files)
	if cb != nil {
		cb(files)
	}
}

// Stop cancels the pending report, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
