package query

import (
	"context"
	"fmt"

	productdomain "github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/internal/store/domain"
)

// GetStoreHandler looks stores up by id or by admin
type GetStoreHandler struct {
	repo domain.StoreRepository
}

// NewGetStoreHandler creates a new get store handler
func NewGetStoreHandler(repo domain.StoreRepository) *GetStoreHandler {
	return &GetStoreHandler{repo: repo}
}

func (h *GetStoreHandler) ByID(ctx context.Context, id string) (*domain.Store, error) {
	return h.repo.FindByID(ctx, id)
}

func (h *GetStoreHandler) ByAdmin(ctx context.Context, adminID string) (*domain.Store, error) {
	return h.repo.FindByAdmin(ctx, adminID)
}

// GetStatsHandler aggregates a store's catalog
type GetStatsHandler struct {
	stores   domain.StoreRepository
	products productdomain.ProductRepository
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(stores domain.StoreRepository, products productdomain.ProductRepository) *GetStatsHandler {
	return &GetStatsHandler{stores: stores, products: products}
}

// Handle executes the store stats query
func (h *GetStatsHandler) Handle(ctx context.Context, storeID string) (*domain.Stats, error) {
	if _, err := h.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}

	total, err := h.products.CountByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	categories, err := h.products.StoreCategories(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	last, err := h.products.LastUpdatedInStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get last update: %w", err)
	}

	return &domain.Stats{
		TotalProducts: total,
		LastUpdated:   last,
		Categories:    categories,
	}, nil
}
