// Package product assembles the catalog service: products, stores, favorites
// and scan statistics over one PostgreSQL database.
package product

import (
	"gorm.io/gorm"

	"github.com/tair/freshsave/internal/product/delivery/http"
	"github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/internal/product/repository"
	"github.com/tair/freshsave/internal/product/usecase/command"
	storehttp "github.com/tair/freshsave/internal/store/delivery/http"
	storedomain "github.com/tair/freshsave/internal/store/domain"
	storerepo "github.com/tair/freshsave/internal/store/repository"
)

// Handlers is everything the catalog binary serves or consumes with.
type Handlers struct {
	Products   *http.ProductHandler
	Stores     *storehttp.StoreHandler
	RecordScan *command.RecordScanHandler
}

// ProvideProductRepository provides the traced product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewTracedProductRepository(repository.NewGormProductRepository(db))
}

func ProvideFavoriteRepository(db *gorm.DB) domain.FavoriteRepository {
	return repository.NewGormFavoriteRepository(db)
}

func ProvideScanStatRepository(db *gorm.DB) domain.ScanStatRepository {
	return repository.NewGormScanStatRepository(db)
}

func ProvideStoreRepository(db *gorm.DB) storedomain.StoreRepository {
	return storerepo.NewGormStoreRepository(db)
}

// Migrate creates or updates every catalog table.
func Migrate(db *gorm.DB) error {
	if err := repository.NewGormProductRepository(db).AutoMigrate(); err != nil {
		return err
	}
	return storerepo.NewGormStoreRepository(db).AutoMigrate()
}
