package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"
	"go.uber.org/zap"

	adapterHTTP "github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/services"
)

// StartTime is when the container was built; /health reports uptime from it.
type StartTime time.Time

// ProvideRouter assembles the handlers and middleware into a gin engine.
func ProvideRouter(i do.Injector) (*gin.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*zap.Logger](i)
	store := do.MustInvoke[*StorageHandle](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)
	tokens := do.MustInvoke[*services.TokenService](i)
	started := do.MustInvoke[StartTime](i)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpLog := log.Named("http")
	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:  adapterHTTP.NewAuthHandler(do.MustInvoke[*services.AuthService](i), tokens, httpLog),
		ItemHandler:  adapterHTTP.NewItemHandler(do.MustInvoke[*services.ItemService](i), httpLog),
		ListHandler:  adapterHTTP.NewListHandler(do.MustInvoke[*services.ListService](i), httpLog),
		StatsHandler: adapterHTTP.NewStatsHandler(do.MustInvoke[*services.StatsService](i), httpLog),
		TokenService: tokens,
		Storage:      store.Backend,
		Redis:        store.Redis,
		LocalLimiter: limiter.Limiter,
		RateLimit:    cfg.RateLimit,
		CORSOrigins:  cfg.CORS.AllowedOrigins,
		Logger:       httpLog,
		StartTime:    time.Time(started),
	}), nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	log *zap.Logger
}

// Serve blocks until the server stops. A graceful shutdown is not an error.
func (h *HTTPServerHandle) Serve() error {
	h.log.Info("HTTP server listening", zap.String("addr", h.Addr))
	if err := h.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown implements do.ShutdownerWithError.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server. It does not start listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*zap.Logger](i)
	router := do.MustInvoke[*gin.Engine](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return &HTTPServerHandle{Server: srv, log: log}, nil
}
