package routes

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tair/freshsave/api-gateway/config"
	"github.com/tair/freshsave/api-gateway/health"
	"github.com/tair/freshsave/api-gateway/middleware"
	"github.com/tair/freshsave/api-gateway/proxy"
	"github.com/tair/freshsave/pkg/auth"
	"github.com/tair/freshsave/pkg/logger"
)

// AuthMode is the edge authentication applied to a route.
type AuthMode string

const (
	AuthNone     AuthMode = "none"
	AuthOptional AuthMode = "optional"
	AuthRequired AuthMode = "required"
)

// RouteDefinition defines a route mapping
type RouteDefinition struct {
	Prefix      string   `json:"prefix"`
	ServiceName string   `json:"service"`
	Description string   `json:"description"`
	Auth        AuthMode `json:"auth"`
	// AdminMethods additionally require a store admin token.
	AdminMethods []string `json:"adminMethods,omitempty"`
}

// Routes holds all route definitions. More specific prefixes come first.
var Routes = []RouteDefinition{
	{
		Prefix:       "/api/products",
		ServiceName:  config.ServiceCatalog,
		Description:  "Product catalog; writes need a store admin",
		Auth:         AuthOptional,
		AdminMethods: []string{fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete},
	},
	{
		Prefix:       "/api/stores",
		ServiceName:  config.ServiceCatalog,
		Description:  "Store profiles and statistics",
		Auth:         AuthOptional,
		AdminMethods: []string{fiber.MethodPost, fiber.MethodPut},
	},
	{
		Prefix:      "/api/favorites",
		ServiceName: config.ServiceCatalog,
		Description: "Favorite products of the caller",
		Auth:        AuthRequired,
	},
	{
		Prefix:      "/api/scans",
		ServiceName: config.ServiceCatalog,
		Description: "Scan statistics",
		Auth:        AuthNone,
	},
	{
		Prefix:      "/api/scan/history",
		ServiceName: config.ServiceScanner,
		Description: "Recent scans of the caller",
		Auth:        AuthRequired,
	},
	{
		Prefix:      "/api/scan",
		ServiceName: config.ServiceScanner,
		Description: "Barcode resolution",
		Auth:        AuthOptional,
	},
}

// ServiceForPath returns the backend that serves path, or "".
func ServiceForPath(path string) string {
	for _, r := range Routes {
		if path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r.ServiceName
		}
	}
	return ""
}

// Dependencies are the shared pieces the gateway is built from. Redis may be
// nil, which disables caching and rate limiting.
type Dependencies struct {
	Tokens   *auth.TokenManager
	Redis    redis.Cmdable
	Registry *prometheus.Registry
	Breakers *middleware.CircuitBreakerManager
}

// Gateway is the assembled fiber app plus the background health checker.
type Gateway struct {
	App    *fiber.App
	Health *health.HealthChecker
	Proxy  *proxy.ReverseProxy
}

// New builds the gateway app with its middleware chain and routes.
func New(cfg *config.GatewayConfig, deps Dependencies) *Gateway {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Breakers == nil {
		deps.Breakers = middleware.NewCircuitBreakerManager(5, 30*time.Second)
	}

	app := fiber.New(fiber.Config{
		AppName:      "FreshSave API Gateway",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLoggingMiddleware())
	app.Use(requestCounter(deps.Registry))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,PATCH,OPTIONS,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-Id, traceparent, tracestate",
		ExposeHeaders: "X-Request-Id, X-Trace-Id, X-Cache, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		MaxAge:        86400,
	}))
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	if deps.Redis != nil {
		cacheConfig := middleware.DefaultCacheConfig()
		if cfg.CacheTTL > 0 {
			cacheConfig.DefaultTTL = cfg.CacheTTL
		}
		app.Use(middleware.CacheMiddleware(deps.Redis, cacheConfig))
	} else {
		logger.Logger.Warn().Msg("Response caching and rate limiting disabled (Redis not available)")
	}
	app.Use(middleware.CircuitBreakerMiddleware(deps.Breakers, ServiceForPath))

	reverseProxy := proxy.NewReverseProxy(cfg)
	checker := health.NewHealthChecker(cfg, reverseProxy.GetLoadBalancers())

	var limiter fiber.Handler
	if deps.Redis != nil {
		limiter = middleware.NewRateLimiter(deps.Redis, cfg.RateLimit, cfg.RateWindow).Middleware()
	}

	registerOpsRoutes(app, deps, checker, reverseProxy)
	for _, route := range Routes {
		registerServiceRoutes(app, route, reverseProxy, deps.Tokens, limiter)
	}

	return &Gateway{App: app, Health: checker, Proxy: reverseProxy}
}

func registerOpsRoutes(app *fiber.App, deps Dependencies, checker *health.HealthChecker, reverseProxy *proxy.ReverseProxy) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(checker.QuickCheck())
	})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		status := checker.CheckAllServices(ctx)
		code := fiber.StatusOK
		if status.Status == "unhealthy" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(status)
	})

	app.Get("/health/services", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()
		return c.JSON(checker.CheckAllServices(ctx))
	})

	app.Get("/gateway/stats", func(c *fiber.Ctx) error {
		balancers := fiber.Map{}
		for name, lb := range reverseProxy.GetLoadBalancers() {
			balancers[name] = lb.GetStats()
		}
		return c.JSON(fiber.Map{
			"loadBalancers":   balancers,
			"circuitBreakers": deps.Breakers.GetAllStats(),
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "FreshSave API Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})
}

// registerServiceRoutes registers all HTTP methods for a service prefix.
// Admin methods are registered first so they take precedence over All.
func registerServiceRoutes(app *fiber.App, route RouteDefinition, reverseProxy *proxy.ReverseProxy, tokens *auth.TokenManager, limiter fiber.Handler) {
	chain := func(guards ...fiber.Handler) []fiber.Handler {
		if limiter != nil {
			guards = append(guards, limiter)
		}
		return append(guards, func(c *fiber.Ctx) error {
			return reverseProxy.ProxyRequest(c, route.ServiceName)
		})
	}

	for _, method := range route.AdminMethods {
		handlers := chain(middleware.AuthMiddleware(tokens), middleware.StoreAdminMiddleware())
		app.Add(method, route.Prefix, handlers...)
		app.Add(method, route.Prefix+"/*", handlers...)
	}

	var handlers []fiber.Handler
	switch route.Auth {
	case AuthRequired:
		handlers = chain(middleware.AuthMiddleware(tokens))
	case AuthOptional:
		handlers = chain(middleware.OptionalAuthMiddleware(tokens))
	default:
		handlers = chain(middleware.StripIdentityMiddleware())
	}
	app.All(route.Prefix, handlers...)
	app.All(route.Prefix+"/*", handlers...)
}

func requestCounter(reg prometheus.Registerer) fiber.Handler {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Requests handled by the gateway",
		},
		[]string{"service", "method", "status"},
	)
	reg.MustRegister(requests)

	return func(c *fiber.Ctx) error {
		err := c.Next()
		service := ServiceForPath(c.Path())
		if service == "" {
			service = "gateway"
		}
		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}
		requests.WithLabelValues(service, c.Method(), strconv.Itoa(status)).Inc()
		return err
	}
}

// errorHandler renders errors in the same envelope the services use
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success":   false,
		"error":     err.Error(),
		"path":      c.Path(),
		"requestId": c.GetRespHeader(fiber.HeaderXRequestID),
	})
}
