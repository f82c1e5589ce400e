package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tair/freshsave/internal/product/domain"
)

// UpdateProductCommand represents the command to update a product.
// Nil fields are left unchanged.
type UpdateProductCommand struct {
	StoreID         string
	Barcode         string
	Name            *string
	Brand           *string
	Category        *string
	ImageURL        *string
	Price           *float64
	Unit            *string
	Ingredients     []string
	Allergens       []string
	NutritionalInfo *domain.NutritionalInfo
}

// UpdateProductHandler handles product update command
type UpdateProductHandler struct {
	repo domain.ProductRepository
	now  func() time.Time
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(repo domain.ProductRepository) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo, now: time.Now}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	product, err := h.repo.FindByBarcode(ctx, strings.TrimSpace(cmd.Barcode))
	if err != nil {
		return nil, err
	}
	if product.StoreID != cmd.StoreID {
		return nil, domain.ErrForbidden
	}

	if cmd.Name != nil {
		product.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Brand != nil {
		product.Brand = strings.TrimSpace(*cmd.Brand)
	}
	if cmd.Category != nil {
		product.Category = strings.TrimSpace(*cmd.Category)
	}
	if cmd.ImageURL != nil {
		product.ImageURL = *cmd.ImageURL
	}
	if cmd.Price != nil {
		product.Price = cmd.Price
	}
	if cmd.Unit != nil {
		product.Unit = *cmd.Unit
	}
	if cmd.Ingredients != nil {
		product.Ingredients = cmd.Ingredients
	}
	if cmd.Allergens != nil {
		product.Allergens = dedupe(cmd.Allergens)
	}
	if cmd.NutritionalInfo != nil {
		product.NutritionalInfo = cmd.NutritionalInfo
	}

	if err := validateFields(product.Name, product.Brand, product.Category, product.Price); err != nil {
		return nil, err
	}

	product.UpdatedAt = h.now()
	if err := h.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}
