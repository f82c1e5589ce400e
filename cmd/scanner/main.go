package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tair/freshsave/cmd/scanner/docs"
	"github.com/tair/freshsave/internal/scanner"
	"github.com/tair/freshsave/internal/scanner/client"
	scanHTTP "github.com/tair/freshsave/internal/scanner/delivery/http"
	"github.com/tair/freshsave/internal/scanner/history"
	"github.com/tair/freshsave/internal/scanner/local"
	"github.com/tair/freshsave/kafka"
	"github.com/tair/freshsave/pkg/auth"
	"github.com/tair/freshsave/pkg/config"
	"github.com/tair/freshsave/pkg/grpcserver"
	"github.com/tair/freshsave/pkg/logger"
	"github.com/tair/freshsave/pkg/middleware"
	"github.com/tair/freshsave/pkg/tracing"
)

func main() {
	config.LoadDotEnv()

	serviceName := config.GetEnv("OTEL_SERVICE_NAME", "scanner-service")
	logger.Init(serviceName, config.IsDevelopment())
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", config.GetEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting scanner service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    serviceName,
		JaegerEndpoint: config.GetEnv("JAEGER_ENDPOINT", ""),
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer tracing.Shutdown(context.Background(), tp)

	secret, err := config.JWTSecret()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Invalid auth configuration")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	table, err := local.Default()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to load local product table")
	}

	stepTimeout := config.GetDuration("STEP_TIMEOUT", scanner.DefaultStepTimeout)
	httpClient := client.NewHTTPClient(stepTimeout)
	catalogURL := config.GetEnv("CATALOG_SERVICE_URL", "http://localhost:8081")
	offURL := config.GetEnv("OFF_BASE_URL", client.DefaultOpenFoodFactsURL)

	opts := []scanner.Option{
		scanner.WithStepTimeout(stepTimeout),
		scanner.WithMetrics(scanner.NewMetrics(registry)),
	}

	publisher, err := kafka.NewPublisher(config.GetList("KAFKA_BROKERS", []string{"localhost:9092"}))
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Kafka unavailable, scan events disabled")
	} else {
		defer publisher.Close()
		opts = append(opts, scanner.WithObserver(publisher))
	}

	resolver := scanner.NewResolver(
		table,
		client.NewCatalogClient(catalogURL, httpClient),
		client.NewOpenFoodFactsClient(offURL, config.GetInt("OFF_RATE_LIMIT", 100), httpClient),
		opts...,
	)

	logger.Logger.Info().
		Int("local_products", table.Len()).
		Str("catalog", catalogURL).
		Str("open_food_facts", offURL).
		Dur("step_timeout", stepTimeout).
		Msg("Resolver initialized")

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.GetEnv("REDIS_ADDR", "localhost:6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Scans still resolve, history calls fail until Redis is back.
		logger.Logger.Warn().Err(err).Msg("Redis unavailable, scan history degraded")
	}

	handler := scanHTTP.NewScanHandler(
		resolver,
		history.NewStore(rdb, 0, 0),
		middleware.NewAuthenticator(auth.NewTokenManager(secret, 0)),
		middleware.NewHTTPMetrics(registry, "scanner"),
	)

	router := mux.NewRouter()
	mwConfig := middleware.DefaultConfig(serviceName)
	middleware.Register(router, mwConfig)

	handler.RegisterRoutes(router)
	scanHTTP.RegisterHealthCheck(router, serviceName, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	scanHTTP.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	grpcPort := config.GetEnv("GRPC_PORT", "9094")
	lis, err := net.Listen("tcp", ":"+grpcPort)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("port", grpcPort).Msg("Failed to listen for gRPC")
	}
	grpcServer := grpcserver.New("scanner", grpcserver.NewMetrics(registry, "scanner"))
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start gRPC server")
		}
	}()

	httpPort := config.GetEnv("HTTP_PORT", "8084")
	server := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           middleware.CORS(mwConfig, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", httpPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down servers...")

	grpcServer.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}
