package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/freshsave/pkg/auth"
)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func get(t *testing.T, app *fiber.App, method, path string, header map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	client, _ := newRedis(t)
	app := fiber.New()
	app.Use(NewRateLimiter(client, 3, time.Minute).Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 3; i++ {
		resp := get(t, app, "GET", "/", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp := get(t, app, "GET", "/", nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "3", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	client, _ := newRedis(t)
	now := time.Now()
	rl := NewRateLimiter(client, 1, time.Minute)
	rl.now = func() time.Time { return now }

	allowed, _, _, err := rl.checkLimit(context.Background(), "ip:1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, _, err = rl.checkLimit(context.Background(), "ip:1")
	require.NoError(t, err)
	assert.False(t, allowed)

	now = now.Add(2 * time.Minute)
	allowed, _, _, err = rl.checkLimit(context.Background(), "ip:1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client, mr := newRedis(t)
	mr.Close()

	app := fiber.New()
	app.Use(NewRateLimiter(client, 1, time.Minute).Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	assert.Equal(t, fiber.StatusOK, get(t, app, "GET", "/", nil).StatusCode)
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker("catalog", 2, 30*time.Second)
	cb.now = func() time.Time { return now }

	failing := func() error { return assert.AnError }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Call(failing), assert.AnError)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.ErrorIs(t, cb.Call(failing), assert.AnError)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(31 * time.Second)
	for i := 0; i < halfOpenSuccesses; i++ {
		require.NoError(t, cb.Call(ok))
		if i < halfOpenSuccesses-1 {
			assert.Equal(t, StateHalfOpen, cb.GetState())
		}
	}
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker("scanner", 1, time.Second)
	cb.now = func() time.Time { return now }

	_ = cb.Call(func() error { return assert.AnError })
	now = now.Add(2 * time.Second)
	_ = cb.Call(func() error { return assert.AnError })
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	manager := NewCircuitBreakerManager(2, time.Minute)
	app := fiber.New()
	app.Use(CircuitBreakerMiddleware(manager, func(path string) string {
		if path == "/ops" {
			return ""
		}
		return "catalog"
	}))
	app.Get("/down", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadGateway) })
	app.Get("/ops", func(c *fiber.Ctx) error { return c.SendString("ok") })

	assert.Equal(t, fiber.StatusBadGateway, get(t, app, "GET", "/down", nil).StatusCode)
	assert.Equal(t, fiber.StatusBadGateway, get(t, app, "GET", "/down", nil).StatusCode)
	assert.Equal(t, fiber.StatusServiceUnavailable, get(t, app, "GET", "/down", nil).StatusCode)
	assert.Equal(t, fiber.StatusOK, get(t, app, "GET", "/ops", nil).StatusCode)

	stats := manager.GetAllStats()["catalog"].(map[string]interface{})
	assert.Equal(t, StateOpen, stats["state"])
}

func TestCacheMiddleware(t *testing.T) {
	client, _ := newRedis(t)
	hits := 0
	app := fiber.New()
	app.Use(CacheMiddleware(client, DefaultCacheConfig()))
	app.Get("/api/products/:barcode", func(c *fiber.Ctx) error {
		hits++
		return c.JSON(fiber.Map{"barcode": c.Params("barcode")})
	})
	app.Put("/api/products/:barcode", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/scan/:barcode", func(c *fiber.Ctx) error {
		hits++
		return c.SendString("scan")
	})

	first := get(t, app, "GET", "/api/products/1", nil)
	assert.Equal(t, "MISS", first.Header.Get("X-Cache"))
	second := get(t, app, "GET", "/api/products/1", nil)
	assert.Equal(t, "HIT", second.Header.Get("X-Cache"))
	assert.JSONEq(t, `{"barcode":"1"}`, body(t, second))
	assert.Equal(t, 1, hits)

	get(t, app, "PUT", "/api/products/1", nil)
	assert.Equal(t, "MISS", get(t, app, "GET", "/api/products/1", nil).Header.Get("X-Cache"))
	assert.Equal(t, 2, hits)

	get(t, app, "GET", "/api/scan/1", nil)
	resp := get(t, app, "GET", "/api/scan/1", nil)
	assert.Empty(t, resp.Header.Get("X-Cache"))
	assert.Equal(t, 4, hits)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("gateway-secret", time.Hour)
	app := fiber.New()
	echo := func(c *fiber.Ctx) error {
		return c.SendString(c.Get(HeaderUserID) + "|" + c.Get(HeaderRole) + "|" + c.Get(HeaderStore))
	}
	app.Get("/required", AuthMiddleware(tokens), echo)
	app.Get("/admin", AuthMiddleware(tokens), StoreAdminMiddleware(), echo)
	app.Get("/optional", OptionalAuthMiddleware(tokens), echo)

	customer, err := tokens.GenerateToken("u1", "", auth.RoleCustomer, "")
	require.NoError(t, err)
	admin, err := tokens.GenerateToken("a1", "", auth.RoleStoreAdmin, "s1")
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "GET", "/required", nil).StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "GET", "/required", map[string]string{"Authorization": "Bearer nope"}).StatusCode)

	resp := get(t, app, "GET", "/required", map[string]string{"Authorization": "Bearer " + customer})
	assert.Equal(t, "u1|customer|", body(t, resp))

	assert.Equal(t, fiber.StatusForbidden, get(t, app, "GET", "/admin", map[string]string{"Authorization": "Bearer " + customer}).StatusCode)
	resp = get(t, app, "GET", "/admin", map[string]string{"Authorization": "Bearer " + admin})
	assert.Equal(t, "a1|store_admin|s1", body(t, resp))

	resp = get(t, app, "GET", "/optional", map[string]string{HeaderUserID: "spoofed"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "||", body(t, resp))
}
