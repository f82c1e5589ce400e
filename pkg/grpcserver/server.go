// Package grpcserver builds the gRPC endpoint every FreshSave service exposes:
// the standard health service and reflection, instrumented with OpenTelemetry,
// Prometheus and structured logs.
package grpcserver

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/tair/freshsave/pkg/logger"
)

// Metrics holds the gRPC request metrics of one service.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

// NewMetrics registers the gRPC metrics of service on reg.
func NewMetrics(reg prometheus.Registerer, service string) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: service + "_service_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "status_code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    service + "_service_grpc_request_duration_seconds",
				Help:    "Duration of gRPC requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: service + "_service_grpc_errors_total",
				Help: "Total number of gRPC errors",
			},
			[]string{"method", "error_code"},
		),
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.errorsTotal)
	return m
}

// UnaryInterceptor collects Prometheus metrics for gRPC calls
func (m *Metrics) UnaryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err).String()
	if err != nil {
		m.errorsTotal.WithLabelValues(info.FullMethod, code).Inc()
	}
	m.requestsTotal.WithLabelValues(info.FullMethod, code).Inc()
	m.requestDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())

	return resp, err
}

// LoggingInterceptor logs gRPC requests with structured logging
func LoggingInterceptor(service string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		traceID := "no-trace"
		if span := oteltrace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		}

		resp, err := handler(ctx, req)
		duration := time.Since(start)

		if err != nil {
			logger.Error(ctx).
				Str("method", info.FullMethod).
				Str("protocol", "grpc").
				Str("service", service).
				Dur("duration", duration).
				Str("trace_id", traceID).
				Str("grpc_status", status.Code(err).String()).
				Err(err).
				Msg("gRPC request failed")
		} else {
			logger.Debug(ctx).
				Str("method", info.FullMethod).
				Str("protocol", "grpc").
				Str("service", service).
				Dur("duration", duration).
				Str("trace_id", traceID).
				Msg("gRPC request completed")
		}

		return resp, err
	}
}

// RecoveryInterceptor turns handler panics into codes.Internal.
func RecoveryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx).
				Interface("panic", r).
				Str("method", info.FullMethod).
				Bytes("stack", debug.Stack()).
				Msg("Panic recovered in gRPC handler")
			err = status.Errorf(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

// Server is a gRPC server carrying the health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	name   string
}

// New creates the server. service names the metrics, logs and health entry.
func New(service string, metrics *Metrics) *Server {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor(service),
			metrics.UnaryInterceptor,
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	return &Server{grpc: s, health: hs, name: service}
}

// SetServing flips the health status reported for the service and overall.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(s.name, st)
}

// Serve blocks serving on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.SetServing(true)
	logger.Logger.Info().
		Str("service", s.name).
		Str("addr", lis.Addr().String()).
		Msg("gRPC server started")
	if err := s.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Stop marks the service not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
