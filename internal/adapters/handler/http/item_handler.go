package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/response"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/services"
)

type ItemHandler struct {
	svc    *services.ItemService
	logger *zap.Logger
}

func NewItemHandler(svc *services.ItemService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		svc:    svc,
		logger: logger,
	}
}

func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/items")
	{
		items.GET("", h.List)
		items.POST("", h.Create)
		items.GET("/:id", h.Get)
		items.PATCH("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
	}
}

// splitTags parses "a, b,,c" into [a b c].
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// List godoc
// @Summary      List catalog items
// @Description  Without filters every item is returned. q searches names and tags, tags requires all listed tags.
// @Tags         items
// @Produce      json
// @Param        q     query  string  false  "name substring or exact tag"
// @Param        tag   query  string  false  "single tag"
// @Param        tags  query  string  false  "comma separated tags, all required"
// @Success      200   {object}  response.Envelope{data=[]domain.Item}
// @Security     BearerAuth
// @Router       /items [get]
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), services.ItemFilter{
		Query: c.Query("q"),
		Tag:   c.Query("tag"),
		Tags:  splitTags(c.Query("tags")),
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, items)
}

// Get godoc
// @Summary  Get a catalog item
// @Tags     items
// @Produce  json
// @Param    id   path      string  true  "item id"
// @Success  200  {object}  response.Envelope{data=domain.Item}
// @Failure  404  {object}  response.Envelope
// @Security BearerAuth
// @Router   /items/{id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, item)
}

// Create godoc
// @Summary  Add an item to the catalog
// @Tags     items
// @Accept   json
// @Produce  json
// @Param    item  body      domain.CreateItemInput  true  "new item"
// @Success  201   {object}  response.Envelope{data=domain.Item}
// @Failure  400   {object}  response.Envelope
// @Security BearerAuth
// @Router   /items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var in domain.CreateItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err)
		return
	}

	item, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusCreated, item)
}

// Update godoc
// @Summary  Partially update a catalog item
// @Tags     items
// @Accept   json
// @Produce  json
// @Param    id    path      string                  true  "item id"
// @Param    item  body      domain.UpdateItemInput  true  "fields to change"
// @Success  200   {object}  response.Envelope{data=domain.Item}
// @Failure  400   {object}  response.Envelope
// @Failure  404   {object}  response.Envelope
// @Security BearerAuth
// @Router   /items/{id} [patch]
func (h *ItemHandler) Update(c *gin.Context) {
	var in domain.UpdateItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err)
		return
	}

	item, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, item)
}

// Delete godoc
// @Summary  Remove an item from the catalog
// @Tags     items
// @Produce  json
// @Param    id   path      string  true  "item id"
// @Success  200  {object}  response.Envelope
// @Failure  404  {object}  response.Envelope
// @Security BearerAuth
// @Router   /items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, nil)
}
