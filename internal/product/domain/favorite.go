package domain

import (
	"context"
	"errors"
	"time"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

// FavoriteProduct links a user to a product they starred
type FavoriteProduct struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	UserID         string    `json:"userId" gorm:"not null;uniqueIndex:idx_favorite_user_product"`
	ProductBarcode string    `json:"productBarcode" gorm:"not null;uniqueIndex:idx_favorite_user_product"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (FavoriteProduct) TableName() string {
	return "favorite_products"
}

// FavoriteRepository defines the contract for favorites data access
type FavoriteRepository interface {
	Add(ctx context.Context, favorite *FavoriteProduct) error
	Find(ctx context.Context, userID, barcode string) (*FavoriteProduct, error)
	Remove(ctx context.Context, userID, barcode string) error
	ListBarcodes(ctx context.Context, userID string) ([]string, error)
}
