package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tair/freshsave/internal/product/domain"
)

// AddFavoriteCommand stars a product for a user
type AddFavoriteCommand struct {
	UserID  string
	Barcode string
}

// AddFavoriteHandler handles add favorite command
type AddFavoriteHandler struct {
	favorites domain.FavoriteRepository
	products  domain.ProductRepository
	now       func() time.Time
}

// NewAddFavoriteHandler creates a new add favorite handler
func NewAddFavoriteHandler(favorites domain.FavoriteRepository, products domain.ProductRepository) *AddFavoriteHandler {
	return &AddFavoriteHandler{favorites: favorites, products: products, now: time.Now}
}

// Handle adds the favorite. Adding an existing favorite returns the stored one.
func (h *AddFavoriteHandler) Handle(ctx context.Context, cmd AddFavoriteCommand) (*domain.FavoriteProduct, error) {
	barcode := strings.TrimSpace(cmd.Barcode)
	if cmd.UserID == "" || barcode == "" {
		return nil, fmt.Errorf("%w: user and barcode are required", domain.ErrInvalidProduct)
	}

	if _, err := h.products.FindByBarcode(ctx, barcode); err != nil {
		return nil, err
	}

	existing, err := h.favorites.Find(ctx, cmd.UserID, barcode)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrFavoriteNotFound) {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}

	favorite := &domain.FavoriteProduct{
		ID:             uuid.NewString(),
		UserID:         cmd.UserID,
		ProductBarcode: barcode,
		CreatedAt:      h.now(),
	}
	if err := h.favorites.Add(ctx, favorite); err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	return favorite, nil
}

// RemoveFavoriteCommand unstars a product
type RemoveFavoriteCommand struct {
	UserID  string
	Barcode string
}

// RemoveFavoriteHandler handles remove favorite command
type RemoveFavoriteHandler struct {
	favorites domain.FavoriteRepository
}

// NewRemoveFavoriteHandler creates a new remove favorite handler
func NewRemoveFavoriteHandler(favorites domain.FavoriteRepository) *RemoveFavoriteHandler {
	return &RemoveFavoriteHandler{favorites: favorites}
}

func (h *RemoveFavoriteHandler) Handle(ctx context.Context, cmd RemoveFavoriteCommand) error {
	return h.favorites.Remove(ctx, cmd.UserID, strings.TrimSpace(cmd.Barcode))
}
