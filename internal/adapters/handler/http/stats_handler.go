package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/response"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/services"
)

type StatsHandler struct {
	svc    *services.StatsService
	logger *zap.Logger
}

func NewStatsHandler(svc *services.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", h.GetStats)
}

// GetStats godoc
// @Summary  Collection progress across all lists
// @Tags     stats
// @Produce  json
// @Success  200  {object}  response.Envelope{data=domain.Stats}
// @Security BearerAuth
// @Router   /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, stats)
}
