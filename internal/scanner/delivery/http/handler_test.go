package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/freshsave/internal/scanner"
	"github.com/tair/freshsave/internal/scanner/history"
	"github.com/tair/freshsave/internal/scanner/local"
	"github.com/tair/freshsave/pkg/auth"
	"github.com/tair/freshsave/pkg/middleware"
)

type testEnv struct {
	router *mux.Router
	tokens *auth.TokenManager
	redis  *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	table, err := local.Default()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	h := NewScanHandler(
		scanner.NewResolver(table, nil, nil),
		history.NewStore(client, 0, 0),
		middleware.NewAuthenticator(tokens),
		middleware.NewHTTPMetrics(prometheus.NewRegistry(), "scanner"),
	)
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	RegisterHealthCheck(router, "scanner", func(ctx context.Context) error { return client.Ping(ctx).Err() })

	return &testEnv{router: router, tokens: tokens, redis: mr}
}

func (e *testEnv) do(t *testing.T, method, path, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec.Code, payload
}

func TestScanAnonymous(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, "GET", "/api/scan/1234567890123", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "1234567890123", data["barcode"])
	assert.Equal(t, "Organic Bananas", data["name"])

	code, body = env.do(t, "GET", "/api/scan/0000000000000", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])

	code, _ = env.do(t, "GET", "/api/scan/%20%20", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestScanRecordsHistoryForUser(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.tokens.GenerateToken("user-1", "", auth.RoleCustomer, "")
	require.NoError(t, err)

	env.do(t, "GET", "/api/scan/1234567890123", token)
	env.do(t, "GET", "/api/scan/5000112637922", token)
	env.do(t, "GET", "/api/scan/0000000000000", token)

	code, body := env.do(t, "GET", "/api/scan/history", token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{"5000112637922", "1234567890123"}, body["data"])

	code, _ = env.do(t, "DELETE", "/api/scan/history", token)
	require.Equal(t, http.StatusOK, code)

	_, body = env.do(t, "GET", "/api/scan/history", token)
	assert.Equal(t, []interface{}{}, body["data"])
}

func TestHistoryRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, "GET", "/api/scan/history", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestScanSurvivesHistoryOutage(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.tokens.GenerateToken("user-1", "", auth.RoleCustomer, "")
	require.NoError(t, err)
	env.redis.Close()

	code, _ := env.do(t, "GET", "/api/scan/1234567890123", token)
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
