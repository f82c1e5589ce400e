package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrStoreExists   = errors.New("admin already owns a store")
	ErrInvalidStore  = errors.New("invalid store")
	ErrNotStoreOwner = errors.New("only the store admin can change this store")
)

// ContactInfo is stored inline with the store row.
type ContactInfo struct {
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Store represents a retailer profile managed by one store admin
type Store struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	Name        string      `json:"name" gorm:"not null"`
	Logo        string      `json:"logo,omitempty"`
	ContactInfo ContactInfo `json:"contactInfo" gorm:"embedded;embeddedPrefix:contact_"`
	AdminID     string      `json:"adminId" gorm:"not null;uniqueIndex"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TableName specifies the table name
func (Store) TableName() string {
	return "stores"
}

// Stats summarises a store's catalog
type Stats struct {
	TotalProducts int64      `json:"totalProducts"`
	LastUpdated   *time.Time `json:"lastUpdated"`
	Categories    []string   `json:"categories"`
}

// StoreRepository defines the contract for store data access
type StoreRepository interface {
	Create(ctx context.Context, store *Store) error
	FindByID(ctx context.Context, id string) (*Store, error)
	FindByAdmin(ctx context.Context, adminID string) (*Store, error)
	Update(ctx context.Context, store *Store) error
}
