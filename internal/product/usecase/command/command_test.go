package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/internal/product/repository"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func price(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

func seededProducts() *repository.MemoryProductRepository {
	return repository.NewMemoryProductRepository(domain.Product{
		Barcode:  "1234567890123",
		Name:     "Organic Bananas",
		Brand:    "Fresh Farms",
		Category: "Fruits",
		Price:    price(2.99),
		Unit:     "bunch",
		StoreID:  "store-1",
	})
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	repo := seededProducts()
	h := NewCreateProductHandler(repo)
	h.now = func() time.Time { return fixedNow }

	product, err := h.Handle(ctx, CreateProductCommand{
		StoreID:   "store-1",
		Barcode:   "  9876543210987 ",
		Name:      "Whole Milk",
		Brand:     "Dairy Best",
		Category:  "Dairy",
		Price:     price(3.49),
		Allergens: []string{"milk", "milk"},
	})
	require.NoError(t, err)
	assert.Equal(t, "9876543210987", product.Barcode)
	assert.Equal(t, fixedNow, product.CreatedAt)
	assert.Equal(t, product.CreatedAt, product.UpdatedAt)
	assert.Equal(t, []string{"milk"}, []string(product.Allergens))

	stored, err := repo.FindByBarcode(ctx, "9876543210987")
	require.NoError(t, err)
	assert.Equal(t, "Whole Milk", stored.Name)
}

func TestCreateProductValidation(t *testing.T) {
	h := NewCreateProductHandler(seededProducts())

	tests := []struct {
		name string
		cmd  CreateProductCommand
		want error
	}{
		{"missing barcode", CreateProductCommand{StoreID: "s", Name: "a", Brand: "b", Category: "c"}, domain.ErrInvalidProduct},
		{"missing name", CreateProductCommand{StoreID: "s", Barcode: "1", Brand: "b", Category: "c"}, domain.ErrInvalidProduct},
		{"external store", CreateProductCommand{StoreID: domain.ExternalStoreID, Barcode: "1", Name: "a", Brand: "b", Category: "c"}, domain.ErrInvalidProduct},
		{"negative price", CreateProductCommand{StoreID: "s", Barcode: "1", Name: "a", Brand: "b", Category: "c", Price: price(-1)}, domain.ErrInvalidProduct},
		{"duplicate barcode", CreateProductCommand{StoreID: "s", Barcode: "1234567890123", Name: "a", Brand: "b", Category: "c"}, domain.ErrBarcodeTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	repo := seededProducts()
	h := NewUpdateProductHandler(repo)
	h.now = func() time.Time { return fixedNow }

	updated, err := h.Handle(ctx, UpdateProductCommand{
		StoreID: "store-1",
		Barcode: "1234567890123",
		Price:   price(1.99),
		Name:    strPtr("Bananas"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bananas", updated.Name)
	assert.Equal(t, "Fresh Farms", updated.Brand)
	assert.Equal(t, 1.99, *updated.Price)
	assert.Equal(t, fixedNow, updated.UpdatedAt)

	_, err = h.Handle(ctx, UpdateProductCommand{StoreID: "store-2", Barcode: "1234567890123", Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.Handle(ctx, UpdateProductCommand{StoreID: "store-1", Barcode: "1234567890123", Name: strPtr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	_, err = h.Handle(ctx, UpdateProductCommand{StoreID: "store-1", Barcode: "000"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	repo := seededProducts()
	h := NewDeleteProductHandler(repo)

	assert.ErrorIs(t, h.Handle(ctx, DeleteProductCommand{StoreID: "other", Barcode: "1234567890123"}), domain.ErrForbidden)
	require.NoError(t, h.Handle(ctx, DeleteProductCommand{StoreID: "store-1", Barcode: "1234567890123"}))
	assert.ErrorIs(t, h.Handle(ctx, DeleteProductCommand{StoreID: "store-1", Barcode: "1234567890123"}), domain.ErrProductNotFound)
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	favorites := repository.NewMemoryFavoriteRepository()
	h := NewAddFavoriteHandler(favorites, seededProducts())

	first, err := h.Handle(ctx, AddFavoriteCommand{UserID: "u1", Barcode: "1234567890123"})
	require.NoError(t, err)
	second, err := h.Handle(ctx, AddFavoriteCommand{UserID: "u1", Barcode: "1234567890123"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	barcodes, err := favorites.ListBarcodes(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890123"}, barcodes)

	_, err = h.Handle(ctx, AddFavoriteCommand{UserID: "u1", Barcode: "000"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRemoveFavorite(t *testing.T) {
	ctx := context.Background()
	favorites := repository.NewMemoryFavoriteRepository()
	require.NoError(t, favorites.Add(ctx, &domain.FavoriteProduct{ID: "f1", UserID: "u1", ProductBarcode: "1"}))

	h := NewRemoveFavoriteHandler(favorites)
	require.NoError(t, h.Handle(ctx, RemoveFavoriteCommand{UserID: "u1", Barcode: "1"}))
	assert.ErrorIs(t, h.Handle(ctx, RemoveFavoriteCommand{UserID: "u1", Barcode: "1"}), domain.ErrFavoriteNotFound)
}

func TestRecordScan(t *testing.T) {
	ctx := context.Background()
	stats := repository.NewMemoryScanStatRepository()
	h := NewRecordScanHandler(stats)

	require.NoError(t, h.Handle(ctx, domain.ScanRecord{Barcode: "1", Outcome: domain.ScanOutcomeFound, Source: "local", ScannedAt: fixedNow}))
	require.NoError(t, h.Handle(ctx, domain.ScanRecord{Barcode: "1", Outcome: "weird", Failures: 2, ScannedAt: fixedNow}))
	require.NoError(t, h.Handle(ctx, domain.ScanRecord{Barcode: "2", Outcome: domain.ScanOutcomeFound, Source: "catalog"}))
	assert.ErrorIs(t, h.Handle(ctx, domain.ScanRecord{Barcode: " "}), domain.ErrInvalidProduct)

	top, err := stats.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "1", top[0].Barcode)
	assert.Equal(t, int64(2), top[0].Scans)
	assert.Equal(t, int64(1), top[0].Found)
	assert.Equal(t, int64(1), top[0].NotFound)
	assert.Equal(t, int64(2), top[0].LookupFailures)
	assert.False(t, top[1].LastScannedAt.IsZero())
}
