package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tair/freshsave/internal/product/domain"
)

// FavoritesHandler answers favorite lookups for a user
type FavoritesHandler struct {
	favorites domain.FavoriteRepository
	products  domain.ProductRepository
}

// NewFavoritesHandler creates a new favorites query handler
func NewFavoritesHandler(favorites domain.FavoriteRepository, products domain.ProductRepository) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites, products: products}
}

// List returns the user's favorite products, most recently starred first.
// Favorites whose product has since been deleted are skipped.
func (h *FavoritesHandler) List(ctx context.Context, userID string) ([]domain.Product, error) {
	barcodes, err := h.favorites.ListBarcodes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if len(barcodes) == 0 {
		return []domain.Product{}, nil
	}

	products, err := h.products.FindByBarcodes(ctx, barcodes)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite products: %w", err)
	}

	byBarcode := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byBarcode[p.Barcode] = p
	}
	ordered := make([]domain.Product, 0, len(products))
	for _, b := range barcodes {
		if p, ok := byBarcode[b]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (h *FavoritesHandler) IsFavorite(ctx context.Context, userID, barcode string) (bool, error) {
	_, err := h.favorites.Find(ctx, userID, strings.TrimSpace(barcode))
	if errors.Is(err, domain.ErrFavoriteNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
