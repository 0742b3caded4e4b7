// Package di wires the SuperList server together.
package di

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/services"
	"github.com/TomerHalfon/SuperList-sub000/internal/di/providers"
)

// NewContainer registers every provider. Nothing is built until invoked.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, providers.StartTime(time.Now()))
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStorage)

	// Business services
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideItemService)
	do.Provide(injector, providers.ProvideListService)
	do.Provide(injector, providers.ProvideStatsService)

	// Workers
	do.Provide(injector, providers.ProvidePurgeWorker)
	do.Provide(injector, providers.ProvideWatcher)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Server
	do.Provide(injector, providers.ProvideRouter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap builds every service so configuration and connection errors
// surface before the server starts listening.
func Bootstrap(injector do.Injector) (*providers.HTTPServerHandle, error) {
	if _, err := do.Invoke[*zap.Logger](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.StorageHandle](injector); err != nil {
		return nil, err
	}

	_ = do.MustInvoke[*services.TokenService](injector)
	_ = do.MustInvoke[*services.AuthService](injector)
	_ = do.MustInvoke[*services.ItemService](injector)
	_ = do.MustInvoke[*services.ListService](injector)
	_ = do.MustInvoke[*services.StatsService](injector)

	// Workers
	if _, err := do.Invoke[*providers.PurgeWorkerHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.WatcherHandle](injector); err != nil {
		return nil, err
	}
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)

	// Server
	_ = do.MustInvoke[*gin.Engine](injector)
	return do.Invoke[*providers.HTTPServerHandle](injector)
}
