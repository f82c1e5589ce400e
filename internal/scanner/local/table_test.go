package local

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/freshsave/internal/product/domain"
)

func TestDefaultTable(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	milk, ok := table.Get("9876543210987")
	require.True(t, ok)
	assert.Equal(t, "Whole Milk 1L", milk.Name)
	require.NotNil(t, milk.NutritionalInfo)
	assert.Equal(t, 3.4, milk.NutritionalInfo.Protein)
	require.NotNil(t, milk.Price)
	assert.Equal(t, 3.49, *milk.Price)

	_, ok = table.Get("0000000000000")
	assert.False(t, ok)
}

func TestGetReturnsCopies(t *testing.T) {
	table, err := New([]domain.Product{{
		Barcode:   "1",
		Name:      "Bananas",
		Allergens: []string{"none"},
	}})
	require.NoError(t, err)

	first, _ := table.Get("1")
	first.Name = "changed"
	first.Allergens[0] = "changed"

	second, _ := table.Get("1")
	assert.Equal(t, "Bananas", second.Name)
	assert.Equal(t, "none", second.Allergens[0])
}

func TestNewRejectsBadSeeds(t *testing.T) {
	_, err := New([]domain.Product{{Barcode: "1"}, {Barcode: " 1 "}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = New([]domain.Product{{Barcode: "  "}})
	assert.ErrorContains(t, err, "missing barcode")

	_, err = Load(strings.NewReader("{"))
	assert.Error(t, err)
}
