package providers

import (
	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/services"
)

func ProvideItemService(i do.Injector) (*services.ItemService, error) {
	store := do.MustInvoke[*StorageHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return services.NewItemService(store.Items, log), nil
}

func ProvideListService(i do.Injector) (*services.ListService, error) {
	store := do.MustInvoke[*StorageHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return services.NewListService(store.Lists, store.Items, log), nil
}

func ProvideStatsService(i do.Injector) (*services.StatsService, error) {
	store := do.MustInvoke[*StorageHandle](i)
	return services.NewStatsService(store.Lists, store.Items), nil
}

func ProvideAuthService(i do.Injector) (*services.AuthService, error) {
	store := do.MustInvoke[*StorageHandle](i)
	return services.NewAuthService(store.Users), nil
}

func ProvideTokenService(i do.Injector) (*services.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	store := do.MustInvoke[*StorageHandle](i)
	return services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, store.Users), nil
}
