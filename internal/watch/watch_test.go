package watch

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) record(files []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, files)
	return nil
}

func (r *recorder) files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []string
	for _, b := range r.batches {
		all = append(all, b...)
	}
	return all
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(filepath.Join(tmpl, "models"), 0o755))
	project := filepath.Join(dir, "project.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(project, []byte("name: a\n"), 0o644))

	var rec recorder
	w, err := New(rec.record, WithDelay(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Add(project))
	require.NoError(t, w.Add(tmpl))
	w.Start()
	defer w.Stop()

	field := filepath.Join(tmpl, "models", "field.ts")
	require.NoError(t, os.WriteFile(field, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(project, []byte("name: b\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, ".swp"), []byte("ignored"), 0o644))

	require.Eventually(t, func() bool {
		files := rec.files()
		return slices.Contains(files, field) && slices.Contains(files, project)
	}, 2*time.Second, 20*time.Millisecond)
	files := rec.files()
	assert.NotContains(t, files, other)
	assert.NotContains(t, files, filepath.Join(tmpl, ".swp"))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop(), "stop is idempotent")
}

func TestWatcherAddMissing(t *testing.T) {
	w, err := New(func([]string) error { return nil })
	require.NoError(t, err)
	defer w.Stop()
	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing")))
}

func TestDebouncer(t *testing.T) {
	var (
		mu    sync.Mutex
		calls [][]string
	)
	d := NewDebouncer(30 * time.Millisecond)
	d.SetCallback(func(files []string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, files)
	})
	d.Add("b.ts")
	d.Add("a.ts")
	d.Add("b.ts")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"a.ts", "b.ts"}, calls[0])
	mu.Unlock()

	t.Run("stop drops pending", func(t *testing.T) {
		called := make(chan struct{}, 1)
		d := NewDebouncer(20 * time.Millisecond)
		d.SetCallback(func([]string) { called <- struct{}{} })
		d.Add("a.ts")
		d.Stop()
		d.Add("b.ts")
		select {
		case <-called:
			t.Fatal("callback after stop")
		case <-time.After(100 * time.Millisecond):
		}
	})
}

func TestCallbackError(t *testing.T) {
	done := make(chan struct{})
	w, err := New(func([]string) error {
		defer close(done)
		return errors.New("boom")
	}, WithDelay(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()
	w.debouncer.Add("x")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback not called")
	}
}
