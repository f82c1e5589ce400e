package config

import (
	"time"

	"github.com/tair/freshsave/pkg/config"
)

// ServiceConfig holds configuration for a backend service
type ServiceConfig struct {
	Name        string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the main gateway configuration
type GatewayConfig struct {
	Port        string
	Services    map[string]ServiceConfig
	CORSOrigins string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RateLimit     int
	RateWindow    time.Duration
	CacheTTL      time.Duration
}

// Service names used by the routing table.
const (
	ServiceCatalog = "catalog"
	ServiceScanner = "scanner"
)

// LoadConfig loads the gateway configuration
func LoadConfig() *GatewayConfig {
	return &GatewayConfig{
		Port:          config.GetEnv("GATEWAY_PORT", "8000"),
		CORSOrigins:   config.GetEnv("CORS_ALLOWED_ORIGINS", "*"),
		JWTSecret:     config.GetEnv("JWT_SECRET", ""),
		RedisAddr:     config.GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: config.GetEnv("REDIS_PASSWORD", ""),
		RateLimit:     config.GetInt("GATEWAY_RATE_LIMIT", 100),
		RateWindow:    config.GetDuration("GATEWAY_RATE_WINDOW", time.Minute),
		CacheTTL:      config.GetDuration("GATEWAY_CACHE_TTL", 5*time.Minute),
		Services: map[string]ServiceConfig{
			ServiceCatalog: {
				Name:        "catalog-service",
				Instances:   config.GetList("CATALOG_SERVICE_URLS", []string{"http://localhost:8081"}),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
			ServiceScanner: {
				Name:        "scanner-service",
				Instances:   config.GetList("SCANNER_SERVICE_URLS", []string{"http://localhost:8084"}),
				Timeout:     15 * time.Second,
				HealthCheck: "/health",
			},
		},
	}
}
