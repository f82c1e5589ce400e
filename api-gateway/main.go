package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/tair/freshsave/api-gateway/config"
	"github.com/tair/freshsave/api-gateway/middleware"
	"github.com/tair/freshsave/api-gateway/routes"
	"github.com/tair/freshsave/pkg/auth"
	appconfig "github.com/tair/freshsave/pkg/config"
	"github.com/tair/freshsave/pkg/logger"
	"github.com/tair/freshsave/pkg/tracing"
)

func main() {
	appconfig.LoadDotEnv()

	serviceName := appconfig.GetEnv("OTEL_SERVICE_NAME", "api-gateway")
	logger.Init(serviceName, appconfig.IsDevelopment())
	logger.SetLevel(appconfig.GetEnv("LOG_LEVEL", "info"))

	cfg := config.LoadConfig()
	secret, err := appconfig.JWTSecret()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("JWT secret not configured")
	}
	cfg.JWTSecret = secret

	logger.Logger.Info().
		Str("environment", appconfig.GetEnv("ENVIRONMENT", "development")).
		Msg("Starting API Gateway")

	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    serviceName,
		JaegerEndpoint: appconfig.GetEnv("JAEGER_ENDPOINT", ""),
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	deps := routes.Dependencies{
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, 0),
		Registry: prometheus.NewRegistry(),
		Breakers: middleware.NewCircuitBreakerManager(5, 30*time.Second),
	}
	deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("redis_addr", cfg.RedisAddr).Msg("Redis unavailable")
	} else {
		deps.Redis = redisClient
		logger.Logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("Connected to Redis")
	}
	cancelPing()

	gw := routes.New(cfg, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go gw.Health.Run(ctx, 15*time.Second)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		for name, svc := range cfg.Services {
			logger.Logger.Info().Str("service", name).Strs("instances", svc.Instances).Msg("Routing to service")
		}
		logger.Logger.Info().Str("addr", addr).Msg("API Gateway listening")
		if err := gw.App.Listen(addr); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down API Gateway...")

	if err := gw.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := redisClient.Close(); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to close Redis client")
	}

	logger.Logger.Info().Msg("API Gateway stopped")
}
