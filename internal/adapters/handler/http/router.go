package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/docs"
	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/middleware"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
)

// Pinger reports whether the storage backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDependencies struct {
	AuthHandler  *AuthHandler
	ItemHandler  *ItemHandler
	ListHandler  *ListHandler
	StatsHandler *StatsHandler
	TokenService middleware.TokenValidator
	Storage      Pinger
	// Redis selects the shared rate limiter; without it LocalLimiter is used.
	Redis        *redis.Client
	LocalLimiter *middleware.LocalRateLimiter
	RateLimit    config.RateLimitConfig
	CORSOrigins  []string
	Logger       *zap.Logger
	StartTime    time.Time
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	switch {
	case deps.Redis != nil:
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit.Requests, deps.RateLimit.Window, logger))
	case deps.LocalLimiter != nil:
		router.Use(deps.LocalLimiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		storageStatus := "connected"
		if deps.Storage != nil {
			if err := deps.Storage.Ping(ctx); err != nil {
				logger.Warn("Health check: storage unreachable", zap.Error(err))
				storageStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		if storageStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":  http.StatusText(statusCode),
			"storage": storageStatus,
			"redis":   redisStatus,
			"uptime":  time.Since(deps.StartTime).Round(time.Second).String(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		deps.AuthHandler.RegisterProtectedRoutes(protected)
		deps.ItemHandler.RegisterRoutes(protected)
		deps.ListHandler.RegisterRoutes(protected)
		deps.StatsHandler.RegisterRoutes(protected)
	}

	return router
}
