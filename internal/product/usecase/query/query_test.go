package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/internal/product/repository"
)

func catalog() *repository.MemoryProductRepository {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return repository.NewMemoryProductRepository(
		domain.Product{Barcode: "111", Name: "Organic Bananas", Brand: "Fresh Farms", Category: "Fruits", StoreID: "s1", UpdatedAt: base},
		domain.Product{Barcode: "222", Name: "Whole Milk", Brand: "Dairy Best", Category: "Dairy", StoreID: "s1", UpdatedAt: base.Add(time.Hour)},
		domain.Product{Barcode: "333", Name: "Sourdough", Brand: "Bakery Co", Category: "Bakery", StoreID: "s2", UpdatedAt: base},
	)
}

func TestGetProduct(t *testing.T) {
	h := NewGetProductHandler(catalog())

	p, err := h.Handle(context.Background(), GetProductQuery{Barcode: " 222 "})
	require.NoError(t, err)
	assert.Equal(t, "Whole Milk", p.Name)

	_, err = h.Handle(context.Background(), GetProductQuery{Barcode: "999"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = h.Handle(context.Background(), GetProductQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestSearchProducts(t *testing.T) {
	h := NewListProductsHandler(catalog())
	ctx := context.Background()

	got, err := h.Search(ctx, SearchProductsQuery{Text: "DAIRY"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "222", got[0].Barcode)

	got, err = h.Search(ctx, SearchProductsQuery{Text: "33"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = h.Search(ctx, SearchProductsQuery{Text: "   "})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByCategoryAndStore(t *testing.T) {
	h := NewListProductsHandler(catalog())
	ctx := context.Background()

	fruits, err := h.ByCategory(ctx, ListByCategoryQuery{Category: "Fruits"})
	require.NoError(t, err)
	assert.Len(t, fruits, 1)

	_, err = h.ByCategory(ctx, ListByCategoryQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	store, err := h.ByStore(ctx, ListByStoreQuery{StoreID: "s1"})
	require.NoError(t, err)
	require.Len(t, store, 2)
	assert.Equal(t, "222", store[0].Barcode, "newest first")

	empty, err := h.ByStore(ctx, ListByStoreQuery{StoreID: "nope"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	favorites := repository.NewMemoryFavoriteRepository()
	for i, b := range []string{"111", "gone", "333"} {
		require.NoError(t, favorites.Add(ctx, &domain.FavoriteProduct{ID: fmt.Sprint(i), UserID: "u1", ProductBarcode: b}))
	}
	h := NewFavoritesHandler(favorites, catalog())

	products, err := h.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "333", products[0].Barcode)
	assert.Equal(t, "111", products[1].Barcode)

	none, err := h.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, none)

	ok, err := h.IsFavorite(ctx, "u1", "111")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = h.IsFavorite(ctx, "u1", "222")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTopScans(t *testing.T) {
	ctx := context.Background()
	stats := repository.NewMemoryScanStatRepository()
	for _, b := range []string{"a", "b", "b", "c", "c", "c"} {
		require.NoError(t, stats.Record(ctx, domain.ScanRecord{Barcode: b, Outcome: domain.ScanOutcomeFound}))
	}

	top, err := NewTopScansHandler(stats).Handle(ctx, TopScansQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "c", top[0].Barcode)
	assert.Equal(t, "b", top[1].Barcode)
}
