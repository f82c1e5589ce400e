package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/freshsave/internal/product/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// SearchProductsQuery matches name, brand or barcode case-insensitively
type SearchProductsQuery struct {
	Text  string
	Limit int
}

// ListByCategoryQuery lists products of one category
type ListByCategoryQuery struct {
	Category string
	Limit    int
	Offset   int
}

// ListByStoreQuery lists products of one store, newest first
type ListByStoreQuery struct {
	StoreID string
	Limit   int
	Offset  int
}

// ListProductsHandler handles the product listing queries
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Search returns an empty list for a blank query
func (h *ListProductsHandler) Search(ctx context.Context, query SearchProductsQuery) ([]domain.Product, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return []domain.Product{}, nil
	}

	products, err := h.repo.Search(ctx, text, clampLimit(query.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return nonNil(products), nil
}

func (h *ListProductsHandler) ByCategory(ctx context.Context, query ListByCategoryQuery) ([]domain.Product, error) {
	if strings.TrimSpace(query.Category) == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalidProduct)
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	products, err := h.repo.FindByCategory(ctx, query.Category, clampLimit(query.Limit), query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return nonNil(products), nil
}

func (h *ListProductsHandler) ByStore(ctx context.Context, query ListByStoreQuery) ([]domain.Product, error) {
	if query.StoreID == "" {
		return nil, fmt.Errorf("%w: store is required", domain.ErrInvalidProduct)
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	products, err := h.repo.FindByStore(ctx, query.StoreID, clampLimit(query.Limit), query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list store products: %w", err)
	}
	return nonNil(products), nil
}

func nonNil(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}
