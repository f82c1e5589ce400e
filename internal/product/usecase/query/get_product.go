package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/freshsave/internal/product/domain"
)

// GetProductQuery represents the query to get a product by barcode
type GetProductQuery struct {
	Barcode string
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	repo domain.ProductRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(ctx context.Context, query GetProductQuery) (*domain.Product, error) {
	barcode := strings.TrimSpace(query.Barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode is required", domain.ErrInvalidProduct)
	}

	return h.repo.FindByBarcode(ctx, barcode)
}
