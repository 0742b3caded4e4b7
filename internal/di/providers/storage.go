package providers

import (
	"context"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/storage"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
)

// StorageHandle wraps the storage backend with shutdown capability.
type StorageHandle struct {
	*storage.Backend
	log *zap.Logger
}

// Shutdown implements do.ShutdownerWithError.
func (h *StorageHandle) Shutdown() error {
	h.log.Info("Closing storage", zap.String("kind", h.Kind))
	return h.Close()
}

// ProvideStorage opens the backend selected by STORAGE_KIND.
func ProvideStorage(i do.Injector) (*StorageHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*zap.Logger](i)

	backend, err := storage.Open(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}
	return &StorageHandle{Backend: backend, log: log}, nil
}
