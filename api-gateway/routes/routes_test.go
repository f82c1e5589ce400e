package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/freshsave/api-gateway/config"
	"github.com/tair/freshsave/pkg/auth"
)

// backend records the requests it receives and answers with its name.
type backend struct {
	name string
	srv  *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

func newBackend(t *testing.T, name string) *backend {
	t.Helper()
	b := &backend{name: name}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Clone(r.Context()))
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"backend": name, "path": r.URL.Path, "query": r.URL.RawQuery})
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *backend) last() *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[len(b.requests)-1]
}

type env struct {
	gw       *Gateway
	tokens   *auth.TokenManager
	catalogA *backend
	catalogB *backend
	scanner  *backend
	registry *prometheus.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		tokens:   auth.NewTokenManager("gateway-test", time.Hour),
		catalogA: newBackend(t, "catalog-a"),
		catalogB: newBackend(t, "catalog-b"),
		scanner:  newBackend(t, "scanner"),
		registry: prometheus.NewRegistry(),
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.GatewayConfig{
		CORSOrigins: "*",
		RateLimit:   1000,
		RateWindow:  time.Minute,
		CacheTTL:    time.Minute,
		Services: map[string]config.ServiceConfig{
			config.ServiceCatalog: {Name: "catalog", Instances: []string{e.catalogA.srv.URL, e.catalogB.srv.URL}, Timeout: 5 * time.Second, HealthCheck: "/health"},
			config.ServiceScanner: {Name: "scanner", Instances: []string{e.scanner.srv.URL}, Timeout: 5 * time.Second, HealthCheck: "/health"},
		},
	}
	e.gw = New(cfg, Dependencies{Tokens: e.tokens, Redis: client, Registry: e.registry})
	return e
}

func (e *env) do(t *testing.T, method, path, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.gw.App.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]interface{}
	_ = json.Unmarshal(raw, &payload)
	return resp, payload
}

func TestServiceForPath(t *testing.T) {
	assert.Equal(t, config.ServiceCatalog, ServiceForPath("/api/products/123"))
	assert.Equal(t, config.ServiceCatalog, ServiceForPath("/api/scans/top"))
	assert.Equal(t, config.ServiceScanner, ServiceForPath("/api/scan/123"))
	assert.Equal(t, config.ServiceScanner, ServiceForPath("/api/scan/history"))
	assert.Equal(t, "", ServiceForPath("/api/scanner"))
	assert.Equal(t, "", ServiceForPath("/health"))
}

func TestGatewayRoutesToServices(t *testing.T) {
	e := newEnv(t)

	_, body := e.do(t, "GET", "/api/scan/3017620422003", "")
	assert.Equal(t, "scanner", body["backend"])
	assert.Equal(t, "/api/scan/3017620422003", body["path"])

	_, body = e.do(t, "GET", "/api/scans/top?limit=3", "")
	assert.Contains(t, []interface{}{"catalog-a", "catalog-b"}, body["backend"])
	assert.Equal(t, "limit=3", body["query"])
}

func TestGatewayBalancesCatalogInstances(t *testing.T) {
	e := newEnv(t)

	// distinct queries so the response cache does not short-circuit
	for _, q := range []string{"a", "b", "c", "d"} {
		resp, _ := e.do(t, "GET", "/api/products/search?q="+q, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 2, e.catalogA.count())
	assert.Equal(t, 2, e.catalogB.count())
}

func TestGatewayCachesPublicReadsOnly(t *testing.T) {
	e := newEnv(t)

	first, _ := e.do(t, "GET", "/api/products/123", "")
	second, _ := e.do(t, "GET", "/api/products/123", "")
	assert.Equal(t, "MISS", first.Header.Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header.Get("X-Cache"))
	assert.Equal(t, 1, e.catalogA.count()+e.catalogB.count())

	e.do(t, "GET", "/api/scan/123", "")
	e.do(t, "GET", "/api/scan/123", "")
	assert.Equal(t, 2, e.scanner.count())
}

func TestGatewayEdgeAuth(t *testing.T) {
	e := newEnv(t)
	customer, err := e.tokens.GenerateToken("u1", "", auth.RoleCustomer, "")
	require.NoError(t, err)
	admin, err := e.tokens.GenerateToken("a1", "", auth.RoleStoreAdmin, "s1")
	require.NoError(t, err)

	resp, _ := e.do(t, "GET", "/api/favorites", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, "GET", "/api/scan/history", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, e.scanner.count())

	resp, _ = e.do(t, "GET", "/api/scan/history", customer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", e.scanner.last().Header.Get("X-User-ID"))
	assert.NotEmpty(t, e.scanner.last().Header.Get("Authorization"))

	resp, _ = e.do(t, "POST", "/api/products", customer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, "POST", "/api/products", admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGatewayOpsEndpoints(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	e.do(t, "GET", "/api/scan/1", "")
	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := e.gw.App.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `gateway_requests_total{method="GET",service="scanner",status="200"} 1`)

	resp, body = e.do(t, "GET", "/gateway/stats", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "loadBalancers")
}
