package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
)

// ExternalStoreID marks products that did not come from a store catalog.
const ExternalStoreID = "external"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrBarcodeTaken    = errors.New("barcode already exists")
	ErrForbidden       = errors.New("operation not permitted for this store")
	ErrInvalidProduct  = errors.New("invalid product")
)

// NutritionalInfo holds per-100g nutrient values.
type NutritionalInfo struct {
	Calories      float64 `json:"calories"`
	Fat           float64 `json:"fat"`
	SaturatedFat  float64 `json:"saturatedFat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugar         float64 `json:"sugar"`
	Protein       float64 `json:"protein"`
	Salt          float64 `json:"salt"`
}

// Product is the canonical product record shared by every source.
type Product struct {
	Barcode   string    `json:"barcode" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Brand     string    `json:"brand" gorm:"not null"`
	Category  string    `json:"category" gorm:"not null;index"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	StoreID   string    `json:"storeId" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Score           *float64                    `json:"score,omitempty"`
	Rating          string                      `json:"rating,omitempty"`
	Ingredients     datatypes.JSONSlice[string] `json:"ingredients"`
	Allergens       datatypes.JSONSlice[string] `json:"allergens"`
	NutritionalInfo *NutritionalInfo            `json:"nutritionalInfo,omitempty" gorm:"serializer:json"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsExternal reports whether the record came from a third-party database.
func (p *Product) IsExternal() bool {
	return p.StoreID == ExternalStoreID
}

// Clone returns a deep copy so callers never share slices or pointers.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.Price != nil {
		price := *p.Price
		c.Price = &price
	}
	if p.Score != nil {
		score := *p.Score
		c.Score = &score
	}
	if p.Ingredients != nil {
		c.Ingredients = append(datatypes.JSONSlice[string]{}, p.Ingredients...)
	}
	if p.Allergens != nil {
		c.Allergens = append(datatypes.JSONSlice[string]{}, p.Allergens...)
	}
	if p.NutritionalInfo != nil {
		info := *p.NutritionalInfo
		c.NutritionalInfo = &info
	}
	return &c
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)
	Search(ctx context.Context, query string, limit int) ([]Product, error)
	FindByCategory(ctx context.Context, category string, limit, offset int) ([]Product, error)
	FindByStore(ctx context.Context, storeID string, limit, offset int) ([]Product, error)
	FindByBarcodes(ctx context.Context, barcodes []string) ([]Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, barcode string) error
	CountByStore(ctx context.Context, storeID string) (int64, error)
	StoreCategories(ctx context.Context, storeID string) ([]string, error)
	LastUpdatedInStore(ctx context.Context, storeID string) (*time.Time, error)
}
