package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/freshsave/internal/product/domain"
)

var tracer = otel.Tracer("product-repository")

// TracedProductRepository wraps a ProductRepository with one span per call
type TracedProductRepository struct {
	next domain.ProductRepository
}

// NewTracedProductRepository creates a new repository with tracing
func NewTracedProductRepository(next domain.ProductRepository) *TracedProductRepository {
	return &TracedProductRepository{next: next}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create with tracing
func (r *TracedProductRepository) Create(ctx context.Context, product *domain.Product) (err error) {
	ctx, span := startSpan(ctx, "repository.Create",
		attribute.String("product.barcode", product.Barcode),
		attribute.String("product.category", product.Category),
		attribute.String("product.store_id", product.StoreID),
	)
	defer func() { endSpan(span, err) }()

	return r.next.Create(ctx, product)
}

// FindByBarcode with tracing
func (r *TracedProductRepository) FindByBarcode(ctx context.Context, barcode string) (product *domain.Product, err error) {
	ctx, span := startSpan(ctx, "repository.FindByBarcode", attribute.String("product.barcode", barcode))
	defer func() { endSpan(span, err) }()

	product, err = r.next.FindByBarcode(ctx, barcode)
	if err == nil {
		span.SetAttributes(
			attribute.String("product.name", product.Name),
			attribute.String("product.store_id", product.StoreID),
		)
	}
	return product, err
}

func (r *TracedProductRepository) Search(ctx context.Context, query string, limit int) (products []domain.Product, err error) {
	ctx, span := startSpan(ctx, "repository.Search",
		attribute.String("query.text", query),
		attribute.Int("query.limit", limit),
	)
	defer func() { endSpan(span, err) }()

	products, err = r.next.Search(ctx, query, limit)
	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, err
}

func (r *TracedProductRepository) FindByCategory(ctx context.Context, category string, limit, offset int) (products []domain.Product, err error) {
	ctx, span := startSpan(ctx, "repository.FindByCategory",
		attribute.String("query.category", category),
		attribute.Int("query.limit", limit),
		attribute.Int("query.offset", offset),
	)
	defer func() { endSpan(span, err) }()

	products, err = r.next.FindByCategory(ctx, category, limit, offset)
	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, err
}

func (r *TracedProductRepository) FindByStore(ctx context.Context, storeID string, limit, offset int) (products []domain.Product, err error) {
	ctx, span := startSpan(ctx, "repository.FindByStore",
		attribute.String("query.store_id", storeID),
		attribute.Int("query.limit", limit),
		attribute.Int("query.offset", offset),
	)
	defer func() { endSpan(span, err) }()

	products, err = r.next.FindByStore(ctx, storeID, limit, offset)
	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, err
}

func (r *TracedProductRepository) FindByBarcodes(ctx context.Context, barcodes []string) (products []domain.Product, err error) {
	ctx, span := startSpan(ctx, "repository.FindByBarcodes", attribute.Int("query.barcodes", len(barcodes)))
	defer func() { endSpan(span, err) }()

	products, err = r.next.FindByBarcodes(ctx, barcodes)
	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, err
}

func (r *TracedProductRepository) Update(ctx context.Context, product *domain.Product) (err error) {
	ctx, span := startSpan(ctx, "repository.Update", attribute.String("product.barcode", product.Barcode))
	defer func() { endSpan(span, err) }()

	return r.next.Update(ctx, product)
}

func (r *TracedProductRepository) Delete(ctx context.Context, barcode string) (err error) {
	ctx, span := startSpan(ctx, "repository.Delete", attribute.String("product.barcode", barcode))
	defer func() { endSpan(span, err) }()

	return r.next.Delete(ctx, barcode)
}

func (r *TracedProductRepository) CountByStore(ctx context.Context, storeID string) (count int64, err error) {
	ctx, span := startSpan(ctx, "repository.CountByStore", attribute.String("query.store_id", storeID))
	defer func() { endSpan(span, err) }()

	count, err = r.next.CountByStore(ctx, storeID)
	span.SetAttributes(attribute.Int64("result.count", count))
	return count, err
}

func (r *TracedProductRepository) StoreCategories(ctx context.Context, storeID string) (categories []string, err error) {
	ctx, span := startSpan(ctx, "repository.StoreCategories", attribute.String("query.store_id", storeID))
	defer func() { endSpan(span, err) }()

	return r.next.StoreCategories(ctx, storeID)
}

func (r *TracedProductRepository) LastUpdatedInStore(ctx context.Context, storeID string) (last *time.Time, err error) {
	ctx, span := startSpan(ctx, "repository.LastUpdatedInStore", attribute.String("query.store_id", storeID))
	defer func() { endSpan(span, err) }()

	return r.next.LastUpdatedInStore(ctx, storeID)
}
