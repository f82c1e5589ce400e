// Package scanner resolves barcodes to canonical products. Sources are tried
// in order (local table, store catalog, Open Food Facts) and the first hit
// wins.
package scanner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/pkg/logger"
)

var tracer = otel.Tracer("product-resolver")

// DefaultStepTimeout bounds each network lookup.
const DefaultStepTimeout = 3 * time.Second

// LocalTable is the read-only, build-time product table.
type LocalTable interface {
	Get(barcode string) (*domain.Product, bool)
}

// Catalog fetches canonical products from the store catalog service.
// A miss is reported as a *ResolutionError.
type Catalog interface {
	ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
}

// NutritionDatabase fetches provider records from Open Food Facts.
// A miss is reported as a *ResolutionError.
type NutritionDatabase interface {
	ProductByBarcode(ctx context.Context, barcode string) (*ExternalProduct, error)
}

// Observer receives a Report after every resolution of a valid barcode.
type Observer interface {
	ObserveResolution(ctx context.Context, report Report)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStepTimeout overrides DefaultStepTimeout. Non-positive values are ignored.
func WithStepTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.stepTimeout = d
		}
	}
}

// WithClock sets the clock used to stamp externally sourced products.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// Resolver holds no mutable state; Resolve is safe for concurrent use.
type Resolver struct {
	local       LocalTable
	catalog     Catalog
	nutrition   NutritionDatabase
	stepTimeout time.Duration
	now         func() time.Time
	metrics     *Metrics
	observer    Observer
}

// NewResolver creates a resolver. Any source may be nil, in which case it is
// skipped.
func NewResolver(local LocalTable, catalog Catalog, nutrition NutritionDatabase, opts ...Option) *Resolver {
	r := &Resolver{
		local:       local,
		catalog:     catalog,
		nutrition:   nutrition,
		stepTimeout: DefaultStepTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the product for barcode, ErrInvalidInput for a blank
// barcode, or ErrProductNotFound when every source misses or fails.
func (r *Resolver) Resolve(ctx context.Context, barcode string) (*domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, ErrInvalidInput
	}

	ctx, span := tracer.Start(ctx, "resolver.Resolve", trace.WithAttributes(attribute.String("product.barcode", barcode)))
	defer span.End()

	start := time.Now()
	report := Report{Barcode: barcode, Outcome: OutcomeNotFound}

	product := r.resolve(ctx, barcode, &report)
	if product != nil {
		report.Outcome = OutcomeFound
	}
	report.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("resolver.outcome", string(report.Outcome)),
		attribute.String("resolver.source", report.Source),
		attribute.Int("resolver.failures", report.LookupFailures()),
	)
	r.finish(ctx, report)

	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (r *Resolver) resolve(ctx context.Context, barcode string, report *Report) *domain.Product {
	if r.local != nil {
		if p, ok := r.local.Get(barcode); ok {
			r.metrics.hit(SourceLocal)
			report.Source = SourceLocal
			return p
		}
		r.metrics.miss(Miss(SourceLocal, KindNotFound, nil))
	}

	if r.catalog != nil {
		p, err := r.step(ctx, SourceCatalog, barcode, func(ctx context.Context) (*domain.Product, error) {
			p, err := r.catalog.ProductByBarcode(ctx, barcode)
			switch {
			case err != nil:
				return nil, err
			case p == nil:
				return nil, Miss(SourceCatalog, KindNotFound, nil)
			case p.Barcode != barcode:
				return nil, Miss(SourceCatalog, KindMalformed, fmt.Errorf("catalog answered with barcode %q", p.Barcode))
			}
			return p, nil
		})
		if err == nil {
			report.Source = SourceCatalog
			return p
		}
		report.Failures = append(report.Failures, err)
	}

	if r.nutrition != nil {
		p, err := r.step(ctx, SourceOpenFoodFacts, barcode, func(ctx context.Context) (*domain.Product, error) {
			ext, err := r.nutrition.ProductByBarcode(ctx, barcode)
			if err != nil {
				return nil, err
			}
			if ext == nil {
				return nil, Miss(SourceOpenFoodFacts, KindNotFound, nil)
			}
			return Normalize(barcode, ext, r.now()), nil
		})
		if err == nil {
			report.Source = SourceOpenFoodFacts
			return p
		}
		report.Failures = append(report.Failures, err)
	}

	return nil
}

// step runs one network lookup under the step timeout and its own span.
func (r *Resolver) step(
	ctx context.Context,
	source, barcode string,
	lookup func(ctx context.Context) (*domain.Product, error),
) (*domain.Product, *ResolutionError) {
	ctx, span := tracer.Start(ctx, "resolver."+source, trace.WithAttributes(attribute.String("resolver.source", source)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.stepTimeout)
	defer cancel()

	p, err := lookup(ctx)
	if err == nil {
		r.metrics.hit(source)
		span.SetAttributes(attribute.Bool("resolver.hit", true))
		return p, nil
	}

	miss := classify(source, err)
	r.metrics.miss(miss)
	span.SetAttributes(
		attribute.Bool("resolver.hit", false),
		attribute.String("resolver.miss_kind", string(miss.Kind)),
	)

	event := logger.WithContext(ctx).Debug()
	if miss.Kind != KindNotFound {
		span.RecordError(miss)
		span.SetStatus(codes.Error, miss.Error())
		event = logger.WithContext(ctx).Warn()
	}
	event.
		Str("barcode", barcode).
		Str("source", source).
		Str("kind", string(miss.Kind)).
		Err(miss.Err).
		Msg("Product lookup missed")

	return nil, miss
}

func (r *Resolver) finish(ctx context.Context, report Report) {
	r.metrics.resolved(report)

	logger.WithContext(ctx).Info().
		Str("barcode", report.Barcode).
		Str("outcome", string(report.Outcome)).
		Str("source", report.Source).
		Int("lookup_failures", report.LookupFailures()).
		Dur("duration", report.Duration).
		Msg("Barcode resolved")

	if r.observer != nil {
		r.observer.ObserveResolution(ctx, report)
	}
}
