package providers

import (
	"context"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/middleware"
	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/watcher"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/workers"
)

// PurgeWorkerHandle holds the soft-delete purger. Worker is nil for backends
// that delete lists outright.
type PurgeWorkerHandle struct {
	Worker *workers.PurgeWorker
}

// Shutdown implements do.ShutdownerWithError.
func (h *PurgeWorkerHandle) Shutdown() error {
	if h.Worker == nil {
		return nil
	}
	return h.Worker.Shutdown()
}

// ProvidePurgeWorker starts the purge loop when the backend soft-deletes.
func ProvidePurgeWorker(i do.Injector) (*PurgeWorkerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*zap.Logger](i)
	store := do.MustInvoke[*StorageHandle](i)

	if store.Purger == nil || cfg.Purge.Interval <= 0 {
		return &PurgeWorkerHandle{}, nil
	}

	w := workers.NewPurgeWorker(store.Purger, cfg.Purge.Interval, cfg.Purge.Retention, log)
	w.Start(context.Background())
	return &PurgeWorkerHandle{Worker: w}, nil
}

// WatcherHandle holds the data directory watcher. Watcher is nil unless the
// file backend runs behind the Redis cache, the only setup where external
// edits can leave stale reads.
type WatcherHandle struct {
	Watcher *watcher.Watcher
}

// Shutdown implements do.ShutdownerWithError.
func (h *WatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	return h.Watcher.Shutdown()
}

// ProvideWatcher drops cached reads whenever a collection file changes on disk.
func ProvideWatcher(i do.Injector) (*WatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*zap.Logger](i)
	store := do.MustInvoke[*StorageHandle](i)

	if !cfg.Storage.Watch || store.DataDir == "" || !store.Cached() {
		return &WatcherHandle{}, nil
	}

	w, err := watcher.New(store.DataDir, watcher.DefaultDebounce, func(ctx context.Context, names []string) {
		log.Info("Data files changed, invalidating cache", zap.Strings("files", names))
		store.InvalidateCaches(ctx)
	}, log)
	if err != nil {
		return nil, err
	}
	if err := w.Start(context.Background()); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return &WatcherHandle{Watcher: w}, nil
}

// RateLimiterHandle holds the in-process limiter used when Redis is absent.
type RateLimiterHandle struct {
	Limiter *middleware.LocalRateLimiter
}

// Shutdown implements do.ShutdownerWithError.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter == nil {
		return nil
	}
	return h.Limiter.Shutdown()
}

func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	store := do.MustInvoke[*StorageHandle](i)

	if store.Cached() || cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0 {
		return &RateLimiterHandle{}, nil
	}
	return &RateLimiterHandle{
		Limiter: middleware.NewLocalRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}, nil
}
