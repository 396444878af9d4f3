package gen

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/syssam/crudify"
)

// Status is the outcome of writing one file.
type Status uint8

// File statuses.
const (
	StatusCreated Status = iota + 1
	StatusUpdated
	StatusUnchanged
	StatusFailed
)

var statusNames = [...]string{
	StatusCreated:   "created",
	StatusUpdated:   "updated",
	StatusUnchanged: "unchanged",
	StatusFailed:    "failed",
}

// String returns the status name.
func (s Status) String() string {
	if int(s) < len(statusNames) && statusNames[s] != "" {
		return statusNames[s]
	}
	return "unknown"
}

// Writer writes generated files below a root directory. Writes are atomic:
// content goes to a temporary file of the target directory, which is then
// renamed over the destination. Files with identical content are left
// untouched.
type Writer struct {
	root   string
	dryRun bool

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks generation results.
type WriterMetrics struct {
	FilesCreated   int
	FilesUpdated   int
	FilesUnchanged int
	FilesFailed    int
	TotalBytes     int64
}

// Generated returns the number of files created or updated.
func (m WriterMetrics) Generated() int { return m.FilesCreated + m.FilesUpdated }

// NewWriter returns a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir, metrics: &WriterMetrics{}}
}

// WithDryRun makes the writer compute statuses without touching the disk.
func (w *Writer) WithDryRun(dry bool) *Writer {
	w.dryRun = dry
	return w
}

// Root returns the output directory.
func (w *Writer) Root() string { return w.root }

// Metrics returns a snapshot of the writer metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics
}

// Resolve returns the file system path of the slash separated output path
// rel. Absolute paths and paths leaving the root fail with an IOError
// wrapping ErrOutsideRoot.
func (w *Writer) Resolve(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if rel == "" || filepath.IsAbs(local) || !filepath.IsLocal(local) {
		return "", crudify.NewIOError("resolve", rel, ErrOutsideRoot)
	}
	return filepath.Join(w.root, local), nil
}

// Write writes data to the output path rel and reports whether the file
// was created, updated or left unchanged.
func (w *Writer) Write(rel string, data []byte) (Status, error) {
	st, err := w.write(rel, data)
	w.mu.Lock()
	defer w.mu.Unlock()
	switch st {
	case StatusCreated:
		w.metrics.FilesCreated++
	case StatusUpdated:
		w.metrics.FilesUpdated++
	case StatusUnchanged:
		w.metrics.FilesUnchanged++
	default:
		w.metrics.FilesFailed++
	}
	if err == nil {
		w.metrics.TotalBytes += int64(len(data))
	}
	return st, err
}

func (w *Writer) write(rel string, data []byte) (Status, error) {
	path, err := w.Resolve(rel)
	if err != nil {
		return StatusFailed, err
	}
	st := StatusCreated
	switch old, err := os.ReadFile(path); {
	case err == nil && bytes.Equal(old, data):
		return StatusUnchanged, nil
	case err == nil:
		st = StatusUpdated
	case errors.Is(err, fs.ErrNotExist):
	default:
		return StatusFailed, crudify.NewIOError("read", path, err)
	}
	if w.dryRun {
		return st, nil
	}
	if err := writeFileAtomic(path, data); err != nil {
		return StatusFailed, err
	}
	return st, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place. The temporary file never outlives a failed write.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crudify.NewIOError("mkdir", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return crudify.NewIOError("create", path, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return crudify.NewIOError("write", path, err)
	}
	if err := f.Close(); err != nil {
		return crudify.NewIOError("write", path, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return crudify.NewIOError("chmod", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return crudify.NewIOError("rename", path, err)
	}
	return nil
}

// Remove deletes the output file rel (if exists) and the directories it
// leaves empty, up to the root.
func (w *Writer) Remove(rel string) error {
	path, err := w.Resolve(rel)
	if err != nil {
		return err
	}
	if w.dryRun {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return crudify.NewIOError("remove", path, err)
	}
	root := filepath.Clean(w.root)
	for dir := filepath.Dir(path); dir != root && strings.HasPrefix(dir, root); dir = filepath.Dir(dir) {
		infos, err := os.ReadDir(dir)
		if err != nil || len(infos) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}
