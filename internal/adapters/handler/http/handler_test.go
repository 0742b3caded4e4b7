package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	adapterHTTP "github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http"
	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/middleware"
	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/recordstore"
	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/repository"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/services"
)

const (
	testEmail    = "shopper@superlist.app"
	testPassword = "PasswordSuperSegreta1!"
)

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

type testAPI struct {
	router *gin.Engine
	token  string
}

type apiOption func(*adapterHTTP.RouterDependencies)

func withLocalLimit(limit int) apiOption {
	return func(d *adapterHTTP.RouterDependencies) {
		d.LocalLimiter = middleware.NewLocalRateLimiter(limit, time.Minute)
	}
}

// newTestAPI wires the real services over an in-memory store and logs in a user.
func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := recordstore.NewMemoryStore()
	items := repository.NewDocumentItemRepository(store)
	lists := repository.NewDocumentListRepository(store)
	users := repository.NewDocumentUserRepository(store)
	logger := zap.NewNop()

	tokens := services.NewTokenService("test-secret", "superlist-test", time.Hour, users)
	deps := adapterHTTP.RouterDependencies{
		AuthHandler:  adapterHTTP.NewAuthHandler(services.NewAuthService(users), tokens, logger),
		ItemHandler:  adapterHTTP.NewItemHandler(services.NewItemService(items, logger), logger),
		ListHandler:  adapterHTTP.NewListHandler(services.NewListService(lists, items, logger), logger),
		StatsHandler: adapterHTTP.NewStatsHandler(services.NewStatsService(lists, items), logger),
		TokenService: tokens,
		RateLimit:    config.RateLimitConfig{Requests: 100, Window: time.Minute},
		Logger:       logger,
		StartTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	if deps.LocalLimiter != nil {
		t.Cleanup(func() { _ = deps.LocalLimiter.Shutdown() })
	}

	return &testAPI{router: adapterHTTP.NewRouter(deps)}
}

// login registers the default user and keeps its token for later calls.
func (a *testAPI) login(t *testing.T) *testAPI {
	t.Helper()
	creds := map[string]string{"email": testEmail, "password": testPassword}

	w := a.do(t, http.MethodPost, "/api/v1/auth/register", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp envelope[struct {
		Token string `json:"token"`
	}]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	a.token = resp.Data.Token
	return a
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// as returns a copy of a that sends token instead.
func (a *testAPI) as(token string) *testAPI {
	return &testAPI{router: a.router, token: token}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeRaw(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
