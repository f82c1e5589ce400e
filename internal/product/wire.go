//go:build wireinject
// +build wireinject

package product

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/freshsave/internal/product/delivery/http"
	"github.com/tair/freshsave/internal/product/usecase/command"
	"github.com/tair/freshsave/internal/product/usecase/query"
	storehttp "github.com/tair/freshsave/internal/store/delivery/http"
	storecommand "github.com/tair/freshsave/internal/store/usecase/command"
	storequery "github.com/tair/freshsave/internal/store/usecase/query"
	"github.com/tair/freshsave/pkg/middleware"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
	ProvideFavoriteRepository,
	ProvideScanStatRepository,
	ProvideStoreRepository,
)

var ProductSet = wire.NewSet(
	command.NewCreateProductHandler,
	command.NewUpdateProductHandler,
	command.NewDeleteProductHandler,
	command.NewAddFavoriteHandler,
	command.NewRemoveFavoriteHandler,
	command.NewRecordScanHandler,
	query.NewGetProductHandler,
	query.NewListProductsHandler,
	query.NewFavoritesHandler,
	query.NewTopScansHandler,
	http.NewProductHandlerWithDI,
)

var StoreSet = wire.NewSet(
	storecommand.NewCreateStoreHandler,
	storecommand.NewUpdateStoreHandler,
	storequery.NewGetStoreHandler,
	storequery.NewGetStatsHandler,
	storehttp.NewStoreHandler,
)

// InitializeHandlers builds the catalog handler graph
func InitializeHandlers(db *gorm.DB, auth *middleware.Authenticator, metrics *middleware.HTTPMetrics) (*Handlers, error) {
	wire.Build(
		RepositorySet,
		ProductSet,
		StoreSet,
		wire.Struct(new(Handlers), "*"),
	)
	return nil, nil
}
