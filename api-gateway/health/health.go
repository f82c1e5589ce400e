package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tair/freshsave/api-gateway/config"
	"github.com/tair/freshsave/api-gateway/loadbalancer"
	"github.com/tair/freshsave/pkg/logger"
)

// InstanceHealth is the probe result of one backend instance
type InstanceHealth struct {
	URL       string  `json:"url"`
	Status    string  `json:"status"`
	LatencyMs float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

// ServiceHealth represents the health status of a service. A service is
// healthy while at least one instance is.
type ServiceHealth struct {
	Name      string           `json:"name"`
	Status    string           `json:"status"`
	Instances []InstanceHealth `json:"instances"`
}

// GatewayHealth represents the overall gateway health
type GatewayHealth struct {
	Gateway  string                   `json:"gateway"`
	Status   string                   `json:"status"` // healthy, degraded, unhealthy
	Services map[string]ServiceHealth `json:"services"`
	Uptime   float64                  `json:"uptime_seconds"`
}

// HealthChecker probes every backend instance and feeds the result to the
// load balancers.
type HealthChecker struct {
	services      map[string]config.ServiceConfig
	loadBalancers map[string]*loadbalancer.RoundRobin
	client        *http.Client
	startTime     time.Time
}

// NewHealthChecker creates a new health checker. loadBalancers may be nil.
func NewHealthChecker(cfg *config.GatewayConfig, loadBalancers map[string]*loadbalancer.RoundRobin) *HealthChecker {
	return &HealthChecker{
		services:      cfg.Services,
		loadBalancers: loadBalancers,
		client:        &http.Client{Timeout: 5 * time.Second},
		startTime:     time.Now(),
	}
}

func (h *HealthChecker) checkInstance(ctx context.Context, baseURL, path string) (result InstanceHealth) {
	start := time.Now()
	result = InstanceHealth{URL: baseURL, Status: "unhealthy"}
	defer func() { result.LatencyMs = float64(time.Since(start).Microseconds()) / 1000 }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	resp, err := h.client.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("Failed to reach service: %v", err)
		return result
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("Unexpected status code: %d", resp.StatusCode)
		return result
	}
	result.Status = "healthy"
	return result
}

// CheckService probes every instance of one service
func (h *HealthChecker) CheckService(ctx context.Context, name string, svc config.ServiceConfig) ServiceHealth {
	result := ServiceHealth{Name: name, Status: "unhealthy", Instances: make([]InstanceHealth, len(svc.Instances))}

	var wg sync.WaitGroup
	for i, instance := range svc.Instances {
		wg.Add(1)
		go func(i int, instance string) {
			defer wg.Done()
			result.Instances[i] = h.checkInstance(ctx, instance, svc.HealthCheck)
		}(i, instance)
	}
	wg.Wait()

	lb := h.loadBalancers[name]
	for _, inst := range result.Instances {
		healthy := inst.Status == "healthy"
		if healthy {
			result.Status = "healthy"
		} else {
			logger.Logger.Warn().
				Str("service", name).
				Str("instance", inst.URL).
				Str("error", inst.Error).
				Msg("Service health check failed")
		}
		if lb != nil {
			lb.SetHealthy(inst.URL, healthy)
		}
	}
	return result
}

// CheckAllServices checks health of all downstream services
func (h *HealthChecker) CheckAllServices(ctx context.Context) GatewayHealth {
	services := make(map[string]ServiceHealth, len(h.services))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, svc := range h.services {
		wg.Add(1)
		go func(n string, s config.ServiceConfig) {
			defer wg.Done()
			health := h.CheckService(ctx, n, s)
			mu.Lock()
			services[n] = health
			mu.Unlock()
		}(name, svc)
	}
	wg.Wait()

	return GatewayHealth{
		Gateway:  "api-gateway",
		Status:   overallStatus(services),
		Services: services,
		Uptime:   time.Since(h.startTime).Seconds(),
	}
}

// Run probes all services every interval until ctx is done.
func (h *HealthChecker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval)
			h.CheckAllServices(probeCtx)
			cancel()
		}
	}
}

func overallStatus(services map[string]ServiceHealth) string {
	healthy := 0
	for _, svc := range services {
		if svc.Status == "healthy" {
			healthy++
		}
	}

	switch {
	case healthy == len(services):
		return "healthy"
	case healthy > 0:
		return "degraded"
	default:
		return "unhealthy"
	}
}

// QuickCheck performs a quick health check (just gateway itself)
func (h *HealthChecker) QuickCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"gateway":   "api-gateway",
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}
