package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func TestAuthHandler_Register(t *testing.T) {
	api := newTestAPI(t)

	t.Run("Success: Should return 201 and created user (No Password)", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "API_Test@SuperList.app",
			"password": testPassword,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[userData](t, w)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data.ID)
		assert.Equal(t, "api_test@superlist.app", resp.Data.Email)
		assert.Empty(t, resp.Data.Password)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Fail: Duplicate email should return 409", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "api_test@superlist.app",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		resp := decode[any](t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "CONFLICT", resp.Code)
		assert.Equal(t, "email already exists", resp.Error)
	})

	t.Run("Fail: Short password should return 400", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "short@superlist.app",
			"password": "123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode[any](t, w).Code)
	})

	t.Run("Fail: Malformed JSON should return 400", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/auth/register", `{"email": "broken"`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", decode[any](t, w).Error)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	api := newTestAPI(t).login(t)

	t.Run("Success: Should return a token and the user", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    "  SHOPPER@superlist.app ",
			"password": testPassword,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[struct {
			Token string   `json:"token"`
			User  userData `json:"user"`
		}](t, w)
		assert.NotEmpty(t, resp.Data.Token)
		assert.Equal(t, testEmail, resp.Data.User.Email)
	})

	t.Run("Fail: Wrong password and unknown email look the same", func(t *testing.T) {
		wrong := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": testEmail, "password": "not-the-password",
		})
		unknown := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "ghost@superlist.app", "password": testPassword,
		})

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
		assert.Equal(t, "UNAUTHORIZED", decode[any](t, wrong).Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	api := newTestAPI(t).login(t)

	t.Run("Success: Should return the token owner", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/auth/me", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testEmail, decode[userData](t, w).Data.Email)
	})

	t.Run("Fail: Missing token should return 401", func(t *testing.T) {
		anon := *api
		anon.token = ""
		w := anon.do(t, http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: Forged token should return 401", func(t *testing.T) {
		forged := *api
		forged.token = api.token + "x"
		w := forged.do(t, http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid or expired token", decode[any](t, w).Error)
	})
}
