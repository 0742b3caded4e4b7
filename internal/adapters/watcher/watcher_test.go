package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	ch    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 10)}
}

func (r *recorder) onChange(_ context.Context, names []string) {
	r.mu.Lock()
	r.calls = append(r.calls, names)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange was not called")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func TestWatcher(t *testing.T) {
	t.Run("Success: document change is reported once per burst", func(t *testing.T) {
		dir := t.TempDir()
		rec := newRecorder()
		w, err := New(dir, 50*time.Millisecond, rec.onChange, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, w.Start(context.Background()))
		defer w.Stop()

		path := filepath.Join(dir, "lists.json")
		for range 3 {
			require.NoError(t, os.WriteFile(path, []byte(`{"lists":[]}`), 0o644))
		}

		assert.Equal(t, []string{"lists.json"}, rec.wait(t))
	})

	t.Run("Success: sentinels and temp files are ignored", func(t *testing.T) {
		dir := t.TempDir()
		rec := newRecorder()
		w, err := New(dir, 50*time.Millisecond, rec.onChange, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, w.Start(context.Background()))
		defer w.Stop()

		require.NoError(t, os.WriteFile(filepath.Join(dir, ".items.json.lock"), []byte("1"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".items.json.123.tmp"), []byte("{}"), 0o644))

		select {
		case <-rec.ch:
			t.Fatal("unexpected onChange for internal files")
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("Success: cancelled context stops the loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		w, err := New(t.TempDir(), 0, newRecorder().onChange, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, w.Start(ctx))

		cancel()
		assert.NoError(t, w.Shutdown())
	})

	t.Run("Fail: missing directory", func(t *testing.T) {
		w, err := New(filepath.Join(t.TempDir(), "missing"), 0, newRecorder().onChange, zap.NewNop())
		require.NoError(t, err)
		assert.Error(t, w.Start(context.Background()))
		assert.NoError(t, w.Stop())
	})
}

func TestDocumentName(t *testing.T) {
	cases := []struct {
		ev   fsnotify.Event
		want string
		ok   bool
	}{
		{fsnotify.Event{Name: "/d/items.json", Op: fsnotify.Write}, "items.json", true},
		{fsnotify.Event{Name: "/d/lists.json", Op: fsnotify.Rename}, "lists.json", true},
		{fsnotify.Event{Name: "/d/items.json", Op: fsnotify.Chmod}, "", false},
		{fsnotify.Event{Name: "/d/.items.json.lock", Op: fsnotify.Create}, "", false},
		{fsnotify.Event{Name: "/d/notes.txt", Op: fsnotify.Write}, "", false},
	}
	for _, tc := range cases {
		got, ok := documentName(tc.ev)
		assert.Equal(t, tc.ok, ok, tc.ev.String())
		assert.Equal(t, tc.want, got)
	}
}
