package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/middleware"
	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/response"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/services"
)

type AuthHandler struct {
	service *services.AuthService
	tokens  *services.TokenService
	logger  *zap.Logger
}

func NewAuthHandler(service *services.AuthService, tokens *services.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		tokens:  tokens,
		logger:  logger,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email}
}

// RegisterRoutes mounts the public endpoints.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes mounts the endpoints that need a bearer token.
func (h *AuthHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/auth/me", h.Me)
}

// Register godoc
// @Summary  Create an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      registerRequest  true  "credentials"
// @Success  201   {object}  response.Envelope{data=userResponse}
// @Failure  400   {object}  response.Envelope
// @Failure  409   {object}  response.Envelope
// @Router   /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("User registered", zap.String("user_id", user.ID))
	response.OK(c, http.StatusCreated, toUserResponse(user))
}

// Login godoc
// @Summary  Exchange credentials for a bearer token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      loginRequest  true  "credentials"
// @Success  200   {object}  response.Envelope{data=loginResponse}
// @Failure  401   {object}  response.Envelope
// @Router   /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, err := h.service.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)})
}

// Me godoc
// @Summary  Current user
// @Tags     auth
// @Produce  json
// @Success  200  {object}  response.Envelope{data=userResponse}
// @Failure  401  {object}  response.Envelope
// @Security BearerAuth
// @Router   /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized", nil)
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserResponse(user))
}
