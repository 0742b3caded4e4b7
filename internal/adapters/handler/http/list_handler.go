package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/response"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/services"
)

type ListHandler struct {
	svc    *services.ListService
	logger *zap.Logger
}

func NewListHandler(svc *services.ListService, logger *zap.Logger) *ListHandler {
	return &ListHandler{
		svc:    svc,
		logger: logger,
	}
}

type addItemRequest struct {
	ItemID    string `json:"itemId"`
	Quantity  *int   `json:"quantity"`
	Collected bool   `json:"collected"`
}

type duplicateListRequest struct {
	Name string `json:"name"`
}

func (h *ListHandler) RegisterRoutes(router *gin.RouterGroup) {
	lists := router.Group("/lists")
	{
		lists.GET("", h.List)
		lists.POST("", h.Create)
		lists.GET("/:id", h.Get)
		lists.PATCH("/:id", h.Update)
		lists.DELETE("/:id", h.Delete)
		lists.POST("/:id/duplicate", h.Duplicate)
		lists.POST("/:id/clear-completed", h.ClearCompleted)

		lists.POST("/:id/items", h.AddItem)
		lists.PATCH("/:id/items/:itemId", h.UpdateItem)
		lists.DELETE("/:id/items/:itemId", h.RemoveItem)
		lists.POST("/:id/items/:itemId/toggle", h.ToggleItem)
	}
}

// reply answers with the list or maps the error.
func (h *ListHandler) reply(c *gin.Context, status int, l *domain.ShoppingList, err error) {
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, status, l)
}

// List godoc
// @Summary  List shopping lists
// @Tags     lists
// @Produce  json
// @Success  200  {object}  response.Envelope{data=[]domain.ShoppingList}
// @Security BearerAuth
// @Router   /lists [get]
func (h *ListHandler) List(c *gin.Context) {
	lists, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, lists)
}

// Get godoc
// @Summary  Get a shopping list
// @Tags     lists
// @Produce  json
// @Param    id   path      string  true  "list id"
// @Success  200  {object}  response.Envelope{data=domain.ShoppingList}
// @Failure  404  {object}  response.Envelope
// @Security BearerAuth
// @Router   /lists/{id} [get]
func (h *ListHandler) Get(c *gin.Context) {
	l, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	h.reply(c, http.StatusOK, l, err)
}

// Create godoc
// @Summary  Create a shopping list
// @Tags     lists
// @Accept   json
// @Produce  json
// @Param    list  body      domain.CreateListInput  true  "new list"
// @Success  201   {object}  response.Envelope{data=domain.ShoppingList}
// @Failure  400   {object}  response.Envelope
// @Security BearerAuth
// @Router   /lists [post]
func (h *ListHandler) Create(c *gin.Context) {
	var in domain.CreateListInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err)
		return
	}

	l, err := h.svc.Create(c.Request.Context(), in)
	h.reply(c, http.StatusCreated, l, err)
}

// Update godoc
// @Summary  Rename a shopping list
// @Tags     lists
// @Accept   json
// @Produce  json
// @Param    id    path      string                  true  "list id"
// @Param    list  body      domain.UpdateListInput  true  "fields to change"
// @Success  200   {object}  response.Envelope{data=domain.ShoppingList}
// @Failure  400   {object}  response.Envelope
// @Failure  404   {object}  response.Envelope
// @Security BearerAuth
// @Router   /lists/{id} [patch]
func (h *ListHandler) Update(c *gin.Context) {
	var in domain.UpdateListInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err)
		return
	}

	l, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	h.reply(c, http.StatusOK, l, err)
}

// Delete godoc
// @Summary  Delete a shopping list
// @Tags     lists
// @Produce  json
// @Param    id   path      string  true  "list id"
// @Success  200  {object}  response.Envelope
// @Failure  404  {object}  response.Envelope
// @Security BearerAuth
// @Router   /lists/{id} [delete]
func (h *ListHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, nil)
}

// Duplicate godoc
// @Summary      Copy a shopping list
// @Description  The body is optional. Without a name the copy is called "<name> (Copy)".
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        id    path      string                true   "list id"
// @Param        body  body      duplicateListRequest  false  "name for the copy"
// @Success      201   {object}  response.Envelope{data=domain.ShoppingList}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Security     BearerAuth
// @Router       /lists/{id}/duplicate [post]
func (h *ListHandler) Duplicate(c *gin.Context) {
	var req duplicateListRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err)
		return
	}

	l, err := h.svc.Duplicate(c.Request.Context(), c.Param("id"), req.Name)
	h.reply(c, http.StatusCreated, l, err)
}

// ClearCompleted godoc
// @Summary  Remove collected entries from a list
// @Tags     lists
// @Produce  json
// @Param    id   path      string  true  "list id"
// @Success  200  {object}  response.Envelope{data=domain.ShoppingList}
// @Failure  404  {object}  response.Envelope
// @Security BearerAuth
// @Router   /lists/{id}/clear-completed [post]
func (h *ListHandler) ClearCompleted(c *gin.Context) {
	l, err := h.svc.ClearCompleted(c.Request.Context(), c.Param("id"))
	h.reply(c, http.StatusOK, l, err)
}

// AddItem godoc
// @Summary      Add a catalog item to a list
// @Description  Adding an item already on the list replaces its entry. Quantity defaults to 1.
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        id     path      string          true  "list id"
// @Param        entry  body      addItemRequest  true  "entry"
// @Success      200    {object}  response.Envelope{data=domain.ShoppingList}
// @Failure      400    {object}  response.Envelope
// @Failure      404    {object}  response.Envelope
// @Security     BearerAuth
// @Router       /lists/{id}/items [post]
func (h *ListHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	entry := domain.ListEntry{ItemID: req.ItemID, Quantity: 1, Collected: req.Collected}
	if req.Quantity != nil {
		entry.Quantity = *req.Quantity
	}

	l, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), entry)
	h.reply(c, http.StatusOK, l, err)
}

// UpdateItem godoc
// @Summary  Change quantity or collected state of an entry
// @Tags     lists
// @Accept   json
// @Produce  json
// @Param    id      path      string                   true  "list id"
// @Param    itemId  path      string                   true  "item id"
// @Param    entry   body      domain.UpdateEntryInput  true  "fields to change"
// @Success  200     {object}  response.Envelope{data=domain.ShoppingList}
// @Failure  400     {object}  response.Envelope
// @Failure  404     {object}  response.Envelope
// @Security BearerAuth
// @Router   /lists/{id}/items/{itemId} [patch]
func (h *ListHandler) UpdateItem(c *gin.Context) {
	var in domain.UpdateEntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err)
		return
	}

	l, err := h.svc.UpdateItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), in)
	h.reply(c, http.StatusOK, l, err)
}

// RemoveItem godoc
// @Summary  Remove an entry from a list
// @Tags     lists
// @Produce  json
// @Param    id      path      string  true  "list id"
// @Param    itemId  path      string  true  "item id"
// @Success  200     {object}  response.Envelope{data=domain.ShoppingList}
// @Failure  404     {object}  response.Envelope
// @Security BearerAuth
// @Router   /lists/{id}/items/{itemId} [delete]
func (h *ListHandler) RemoveItem(c *gin.Context) {
	l, err := h.svc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	h.reply(c, http.StatusOK, l, err)
}

// ToggleItem godoc
// @Summary  Flip the collected state of an entry
// @Tags     lists
// @Produce  json
// @Param    id      path      string  true  "list id"
// @Param    itemId  path      string  true  "item id"
// @Success  200     {object}  response.Envelope{data=domain.ShoppingList}
// @Failure  404     {object}  response.Envelope
// @Security BearerAuth
// @Router   /lists/{id}/items/{itemId}/toggle [post]
func (h *ListHandler) ToggleItem(c *gin.Context) {
	l, err := h.svc.ToggleItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	h.reply(c, http.StatusOK, l, err)
}
