package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfkeeper/shelfkeeper-server/internal/auth"
	"github.com/shelfkeeper/shelfkeeper-server/internal/ratelimit"
	"github.com/shelfkeeper/shelfkeeper-server/internal/service"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store/badgerdb"
	"github.com/shelfkeeper/shelfkeeper-server/internal/validation"
)

const testAdminToken = "test-admin"

var adminHeader = "X-Admin-Token: " + testAdminToken

type testEnv struct {
	server *Server
	api    humatest.TestAPI
	store  *badgerdb.Store
}

// setupTestServer creates a server over an in-memory badger store.
// limiter may be nil.
func setupTestServer(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *testEnv {
	t.Helper()
	return setupTestServerWithOptions(t, limiter, Options{})
}

func setupTestServerWithOptions(t *testing.T, limiter *ratelimit.KeyedRateLimiter, opts Options) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := badgerdb.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	v := validation.New()
	users := service.NewUserService(st, v, logger)
	library := service.NewLibraryService(st, users, v, logger)

	services := &Services{
		Catalog: service.NewCatalogService(st, v, logger),
		Users:   users,
		Library: library,
		Query:   service.NewQueryService(st, library),
		Store:   st,
	}

	guard, err := auth.NewAdminGuard(testAdminToken, "")
	require.NoError(t, err)

	s := NewServer(services, guard, limiter, opts, logger)

	return &testEnv{
		server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
	}
}

// decodeJSON unmarshals a recorded response body into T.
func decodeJSON[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func assertErrorCode(t *testing.T, resp *httptest.ResponseRecorder, status int, code string) map[string]any {
	t.Helper()
	require.Equal(t, status, resp.Code, resp.Body.String())
	body := decodeJSON[map[string]any](t, resp)
	assert.Equal(t, code, body["code"])
	return body
}

func TestIndex(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := env.api.Get("/")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeJSON[IndexResponse](t, resp)
	assert.Equal(t, Version, body.Version)
	assert.Contains(t, body.Endpoints["admin"], "POST /admin/books")
	assert.Contains(t, body.Endpoints["user"], "PATCH /user/library/{book_id}/read")
	assert.Equal(t, "test_user", body.TestUser)
}

func TestHealthCheck(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := env.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeJSON[HealthResponse](t, resp)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
}

func TestHealthCheck_StoreClosed(t *testing.T) {
	env := setupTestServer(t, nil)
	require.NoError(t, env.store.Close())

	resp := env.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeJSON[HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "database ping failed", body.Components["database"].Message)
}

func TestHealthCheck_NoStore(t *testing.T) {
	s := &Server{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	got := s.checkDatabase(t.Context())

	assert.Equal(t, "degraded", got.Status)
}

func TestUnknownRoute(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := env.api.Get("/no/such/thing")

	assertErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestTrailingSlash(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := env.api.Get("/user/search/")

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestOpenAPIDocument(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := env.api.Get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Contains(t, resp.Body.String(), "addToLibrary")
	assert.Contains(t, resp.Body.String(), "adminCreateBook")
}

func TestCreateGuestUser(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := env.api.Post("/create-test-user")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	body := decodeJSON[GuestUserResponse](t, resp)
	assert.True(t, strings.HasPrefix(body.Username, "user_"))
	assert.Len(t, body.Username, len("user_")+8)

	// The guest can use their library right away.
	resp = env.api.Get("/user/library?username=" + body.Username)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeJSON[[]map[string]any](t, resp))
}

func TestAdminRateLimit(t *testing.T) {
	limiter := ratelimit.New(0.001, 2)
	t.Cleanup(limiter.Stop)
	env := setupTestServer(t, limiter)

	for range 2 {
		resp := env.api.Get("/admin/books", adminHeader)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := env.api.Get("/admin/books", adminHeader)
	assertErrorCode(t, resp, http.StatusTooManyRequests, "RATE_LIMITED")
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))

	// Catalog reads for users share no budget with admin routes.
	resp = env.api.Get("/user/books")
	assert.Equal(t, http.StatusOK, resp.Code)
}

// adminRequest sends an authenticated admin request from peer through the
// full middleware stack.
func adminRequest(env *testEnv, peer string, headers map[string]string) int {
	r := httptest.NewRequest(http.MethodGet, "/admin/books", nil)
	r.RemoteAddr = peer
	r.Header.Set("X-Admin-Token", testAdminToken)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)
	return w.Code
}

func TestAdminRateLimit_PerClient(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	env := setupTestServer(t, limiter)

	require.Equal(t, http.StatusOK, adminRequest(env, "10.0.0.1:5000", nil))
	assert.Equal(t, http.StatusTooManyRequests, adminRequest(env, "10.0.0.1:5001", nil))
	assert.Equal(t, http.StatusOK, adminRequest(env, "10.0.0.2:5000", nil))
}

func TestAdminRateLimit_IgnoresForwardedHeadersByDefault(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	env := setupTestServer(t, limiter)

	passed := 0
	for i := range 20 {
		code := adminRequest(env, "10.0.0.1:5000", map[string]string{
			"X-Forwarded-For": fmt.Sprintf("172.16.0.%d", i),
			"X-Real-IP":       fmt.Sprintf("172.17.0.%d", i),
		})
		if code == http.StatusOK {
			passed++
		}
	}

	assert.Equal(t, 1, passed)
}

func TestAdminRateLimit_TrustedProxy(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	env := setupTestServerWithOptions(t, limiter, Options{TrustProxyHeaders: true})

	proxy := "192.168.1.1:443"
	require.Equal(t, http.StatusOK, adminRequest(env, proxy, map[string]string{"X-Forwarded-For": "1.1.1.1"}))
	assert.Equal(t, http.StatusTooManyRequests, adminRequest(env, proxy, map[string]string{"X-Forwarded-For": "1.1.1.1"}))
	assert.Equal(t, http.StatusOK, adminRequest(env, proxy, map[string]string{"X-Forwarded-For": "2.2.2.2"}))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded header ignored", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "9.9.9.9:1234", "9.9.9.9"},
		{"real ip ignored", map[string]string{"X-Real-IP": "3.3.3.3"}, "9.9.9.9:1234", "9.9.9.9"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"ipv6 remote", nil, "[::1]:8080", "::1"},
		{"no port", nil, "9.9.9.9", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}
