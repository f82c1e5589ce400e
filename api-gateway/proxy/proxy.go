package proxy

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/freshsave/api-gateway/config"
	"github.com/tair/freshsave/api-gateway/loadbalancer"
	"github.com/tair/freshsave/pkg/logger"
)

const maxResponseBytes = 10 << 20

// hop-by-hop and length headers are not forwarded in either direction
var skipHeaders = map[string]bool{
	"host":              true,
	"connection":        true,
	"content-length":    true,
	"transfer-encoding": true,
	"keep-alive":        true,
	"upgrade":           true,
}

// ReverseProxy handles proxying requests to backend services
type ReverseProxy struct {
	services      map[string]config.ServiceConfig
	client        *http.Client
	loadBalancers map[string]*loadbalancer.RoundRobin
}

// NewReverseProxy creates a new reverse proxy
func NewReverseProxy(cfg *config.GatewayConfig) *ReverseProxy {
	loadBalancers := make(map[string]*loadbalancer.RoundRobin, len(cfg.Services))
	for name, svc := range cfg.Services {
		loadBalancers[name] = loadbalancer.NewRoundRobin(svc.Instances)
	}

	return &ReverseProxy{
		services:      cfg.Services,
		loadBalancers: loadBalancers,
		client:        &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// ProxyRequest forwards the request to the next instance of serviceName
func (p *ReverseProxy) ProxyRequest(c *fiber.Ctx, serviceName string) error {
	lb, ok := p.loadBalancers[serviceName]
	if !ok {
		return fiber.NewError(fiber.StatusBadGateway, "unknown service "+serviceName)
	}
	serverURL := lb.Next()
	if serverURL == "" {
		return fiber.NewError(fiber.StatusBadGateway, "no available instances for "+serviceName)
	}

	timeout := p.services[serviceName].Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
	defer cancel()

	targetURL := buildTargetURL(c, serverURL)
	req, err := http.NewRequestWithContext(ctx, c.Method(), targetURL, bytes.NewReader(c.Body()))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create request")
	}
	copyHeaders(c, req)

	logger.Logger.Debug().
		Str("service", serviceName).
		Str("target_url", targetURL).
		Msg("Proxying request")

	resp, err := p.client.Do(req)
	if err != nil {
		logger.WithContext(c.UserContext()).Error().
			Err(err).
			Str("service", serviceName).
			Str("instance", serverURL).
			Msg("Backend unreachable")
		status := fiber.StatusBadGateway
		if ctx.Err() == context.DeadlineExceeded {
			status = fiber.StatusGatewayTimeout
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to reach backend service",
			"service": serviceName,
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to read backend response")
	}

	for key, values := range resp.Header {
		if skipHeaders[strings.ToLower(key)] {
			continue
		}
		for _, value := range values {
			c.Response().Header.Add(key, value)
		}
	}
	c.Status(resp.StatusCode)
	return c.Send(body)
}

// GetLoadBalancers returns all load balancers (for stats)
func (p *ReverseProxy) GetLoadBalancers() map[string]*loadbalancer.RoundRobin {
	return p.loadBalancers
}

func buildTargetURL(c *fiber.Ctx, serverURL string) string {
	target := strings.TrimRight(serverURL, "/") + string(c.Request().URI().Path())
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		target += "?" + qs
	}
	return target
}

func copyHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		if skipHeaders[strings.ToLower(string(key))] {
			return
		}
		req.Header.Add(string(key), string(value))
	})

	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())
}
