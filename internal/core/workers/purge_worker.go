package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

// PurgeWorker periodically hard-deletes lists that have been soft-deleted
// for longer than the retention period.
type PurgeWorker struct {
	purger    domain.ListPurger
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPurgeWorker(purger domain.ListPurger, interval, retention time.Duration, logger *zap.Logger) *PurgeWorker {
	return &PurgeWorker{
		purger:    purger,
		interval:  interval,
		retention: retention,
		logger:    logger.Named("purge-worker"),
		now:       time.Now,
	}
}

// RunOnce purges everything deleted before now minus the retention period.
func (w *PurgeWorker) RunOnce(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.retention)

	n, err := w.purger.PurgeDeleted(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		w.logger.Info("Purged deleted lists", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

// Start runs the purge loop in the background until ctx ends or Stop is called.
func (w *PurgeWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		w.logger.Info("Purge worker started", zap.Duration("interval", w.interval))

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := w.RunOnce(ctx); err != nil {
					w.logger.Error("Purge failed", zap.Error(err))
				}
			case <-ctx.Done():
				w.logger.Info("Purge worker shutting down")
				return
			}
		}
	}(w.done)
}

// Stop cancels the loop and waits for it to exit.
func (w *PurgeWorker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *PurgeWorker) Shutdown() error {
	w.Stop()
	return nil
}
