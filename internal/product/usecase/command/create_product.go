package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tair/freshsave/internal/product/domain"
)

// CreateProductCommand represents the command to create a new product
type CreateProductCommand struct {
	StoreID         string
	Barcode         string
	Name            string
	Brand           string
	Category        string
	ImageURL        string
	Price           *float64
	Unit            string
	Ingredients     []string
	Allergens       []string
	NutritionalInfo *domain.NutritionalInfo
}

// CreateProductHandler handles product creation command
type CreateProductHandler struct {
	repo domain.ProductRepository
	now  func() time.Time
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository) *CreateProductHandler {
	return &CreateProductHandler{repo: repo, now: time.Now}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	barcode := strings.TrimSpace(cmd.Barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode is required", domain.ErrInvalidProduct)
	}
	if cmd.StoreID == "" || cmd.StoreID == domain.ExternalStoreID {
		return nil, fmt.Errorf("%w: a store is required", domain.ErrInvalidProduct)
	}
	if err := validateFields(cmd.Name, cmd.Brand, cmd.Category, cmd.Price); err != nil {
		return nil, err
	}

	// Check if barcode already exists
	if _, err := h.repo.FindByBarcode(ctx, barcode); err == nil {
		return nil, domain.ErrBarcodeTaken
	} else if !errors.Is(err, domain.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to check barcode: %w", err)
	}

	now := h.now()
	product := &domain.Product{
		Barcode:         barcode,
		Name:            strings.TrimSpace(cmd.Name),
		Brand:           strings.TrimSpace(cmd.Brand),
		Category:        strings.TrimSpace(cmd.Category),
		ImageURL:        cmd.ImageURL,
		Price:           cmd.Price,
		Unit:            cmd.Unit,
		StoreID:         cmd.StoreID,
		Ingredients:     cmd.Ingredients,
		Allergens:       dedupe(cmd.Allergens),
		NutritionalInfo: cmd.NutritionalInfo,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.repo.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrBarcodeTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func validateFields(name, brand, category string, price *float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidProduct)
	}
	if strings.TrimSpace(brand) == "" {
		return fmt.Errorf("%w: brand is required", domain.ErrInvalidProduct)
	}
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: category is required", domain.ErrInvalidProduct)
	}
	if price != nil && *price < 0 {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrInvalidProduct)
	}
	return nil
}

func dedupe(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
