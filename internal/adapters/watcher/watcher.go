// Package watcher invalidates cached data when the file backend's documents
// are changed by something other than this process.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches the bursts produced by an atomic rename.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls onChange at most once per debounce window after a document
// in dir is created, written, removed or renamed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	debounce time.Duration
	onChange func(ctx context.Context, names []string)
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func New(dir string, debounce time.Duration, onChange func(ctx context.Context, names []string), logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: create: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fsw:      fsw,
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		logger:   logger.Named("watcher"),
	}, nil
}

// Start begins watching and returns immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", w.dir, err)
	}

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.run(ctx)

	w.logger.Info("Watching data directory", zap.String("dir", w.dir))
	return nil
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.running {
		w.running = false
		close(w.stopCh)
		w.mu.Unlock()
		<-w.doneCh
	} else {
		w.mu.Unlock()
	}
	return w.fsw.Close()
}

// Shutdown lets the DI container stop the watcher.
func (w *Watcher) Shutdown() error {
	return w.Stop()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		pending = map[string]bool{}
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			name, relevant := documentName(ev)
			if !relevant {
				continue
			}
			pending[name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watch error", zap.Error(err))

		case <-fire:
			names := make([]string, 0, len(pending))
			for n := range pending {
				names = append(names, n)
			}
			pending = map[string]bool{}
			timer, fire = nil, nil

			w.logger.Debug("Documents changed", zap.Strings("documents", names))
			w.onChange(ctx, names)
		}
	}
}

// documentName filters out lock sentinels, temp files and chmod noise.
func documentName(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	return name, true
}
