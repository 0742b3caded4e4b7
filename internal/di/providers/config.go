package providers

import (
	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/logger"
)

// ProvideLogger builds the process logger from the log section of the config.
func ProvideLogger(i do.Injector) (*zap.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("env", cfg.Env)), nil
}
