package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/freshsave/internal/product/domain"
)

// DeleteProductCommand represents the command to delete a product
type DeleteProductCommand struct {
	StoreID string
	Barcode string
}

// DeleteProductHandler handles product deletion command
type DeleteProductHandler struct {
	repo domain.ProductRepository
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(repo domain.ProductRepository) *DeleteProductHandler {
	return &DeleteProductHandler{repo: repo}
}

// Handle executes the delete product command
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) error {
	product, err := h.repo.FindByBarcode(ctx, cmd.Barcode)
	if err != nil {
		return err
	}
	if product.StoreID != cmd.StoreID {
		return domain.ErrForbidden
	}

	if err := h.repo.Delete(ctx, cmd.Barcode); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
