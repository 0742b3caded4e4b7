// Package response writes the result envelope every endpoint answers with.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

// Codes used in addition to the domain error codes.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// Fail aborts the request with an error envelope.
func Fail(c *gin.Context, status int, code, msg string, details any) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// BadRequest reports a body or query that could not be decoded.
func BadRequest(c *gin.Context, err error) {
	Fail(c, http.StatusBadRequest, string(domain.CodeValidation), "invalid request body", map[string]string{"body": err.Error()})
}

// Error maps err to a status and envelope. Anything unclassified becomes a
// generic 500; its detail goes to the log only.
func Error(c *gin.Context, logger *zap.Logger, err error) {
	var de *domain.Error
	switch {
	case errors.As(err, &de) && de.Code == domain.CodeNotFound:
		Fail(c, http.StatusNotFound, string(de.Code), de.Message, nil)

	case errors.As(err, &de) && de.Code == domain.CodeValidation:
		Fail(c, http.StatusBadRequest, string(de.Code), de.Message, de.Details)

	case errors.Is(err, domain.ErrInvalidEmail), errors.Is(err, domain.ErrPasswordTooShort):
		Fail(c, http.StatusBadRequest, string(domain.CodeValidation), err.Error(), nil)

	case errors.Is(err, domain.ErrInvalidCredentials):
		Fail(c, http.StatusUnauthorized, CodeUnauthorized, "invalid email or password", nil)

	case errors.Is(err, domain.ErrEmailAlreadyExists):
		Fail(c, http.StatusConflict, CodeConflict, "email already exists", nil)

	case errors.Is(err, domain.ErrUserNotFound):
		Fail(c, http.StatusNotFound, string(domain.CodeNotFound), "user not found", nil)

	default:
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		}
		if de != nil {
			fields = append(fields, zap.String("code", string(de.Code)))
		}
		logger.Error("Request failed", fields...)
		_ = c.Error(err)
		Fail(c, http.StatusInternalServerError, CodeInternal, "internal server error", nil)
	}
}
