package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tair/freshsave/cmd/catalog/docs"
	"github.com/tair/freshsave/internal/product"
	productHTTP "github.com/tair/freshsave/internal/product/delivery/http"
	"github.com/tair/freshsave/kafka"
	"github.com/tair/freshsave/pkg/auth"
	"github.com/tair/freshsave/pkg/config"
	"github.com/tair/freshsave/pkg/database"
	"github.com/tair/freshsave/pkg/logger"
	"github.com/tair/freshsave/pkg/middleware"
	"github.com/tair/freshsave/pkg/tracing"
)

func main() {
	config.LoadDotEnv()

	// Initialize logger
	serviceName := config.GetEnv("OTEL_SERVICE_NAME", "catalog-service")
	logger.Init(serviceName, config.IsDevelopment())
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", config.GetEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting catalog service")

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

	// Load database configuration
	db, err := database.NewGormConnection(database.Config{
		Host:     config.GetEnv("DB_HOST", "localhost"),
		Port:     config.GetEnv("DB_PORT", "5432"),
		User:     config.GetEnv("DB_USER", "postgres"),
		Password: config.GetEnv("DB_PASSWORD", "postgres"),
		DBName:   config.GetEnv("DB_NAME", "freshsave"),
		SSLMode:  config.GetEnv("DB_SSLMODE", "disable"),
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	if err := product.Migrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize handlers with Wire DI
	handlers, err := product.InitializeHandlers(
		db,
		middleware.NewAuthenticator(auth.NewTokenManager(secret, 0)),
		middleware.NewHTTPMetrics(registry, "catalog"),
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handlers")
	}

	brokers := config.GetList("KAFKA_BROKERS", []string{"localhost:9092"})
	consumer, err := kafka.NewConsumer(brokers, "catalog-scan-stats", []string{kafka.TopicProductScanned})
	if err != nil {
		// Scan statistics stop updating, the catalog itself keeps serving.
		logger.Logger.Warn().Err(err).Msg("Kafka unavailable, scan statistics disabled")
	} else {
		defer consumer.Close()
		consumer.RegisterHandler(kafka.EventTypeProductScanned, func(ctx context.Context, event kafka.ProductScannedEvent) error {
			return handlers.RecordScan.Handle(ctx, event.ScanRecord())
		})
		if err := consumer.Start(ctx); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
		}
	}

	router := mux.NewRouter()
	mwConfig := middleware.DefaultConfig(serviceName)
	middleware.Register(router, mwConfig)

	// Store routes first: /api/stores/admin/{adminId} must not be read as a store id.
	handlers.Stores.RegisterRoutes(router)
	handlers.Products.RegisterRoutes(router)
	productHTTP.RegisterHealthCheck(router, serviceName, sqlDB)
	productHTTP.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	httpPort := config.GetEnv("HTTP_PORT", "8081")
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
	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}
