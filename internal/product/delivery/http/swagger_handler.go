package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreateProduct godoc
// @Summary Create a new product
// @Description Create a product in the caller's store (store admin only)
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{barcode=string,name=string,brand=string,category=string,imageUrl=string,price=number,unit=string} true "Product data"
// @Success 201 {object} object{success=bool,message=string,data=domain.Product}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/products [post]
func (h *ProductHandler) CreateProductDoc() {}

// SearchProducts godoc
// @Summary Search products
// @Description Case-insensitive substring match on name, brand and barcode
// @Tags Products
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Limit"
// @Success 200 {object} object{success=bool,data=[]domain.Product}
// @Router /api/products/search [get]
func (h *ProductHandler) SearchProductsDoc() {}

// ListByCategory godoc
// @Summary List products by category
// @Tags Products
// @Produce json
// @Param category path string true "Category"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=[]domain.Product}
// @Router /api/products/category/{category} [get]
func (h *ProductHandler) ListByCategoryDoc() {}

// GetProduct godoc
// @Summary Get product by barcode
// @Tags Products
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} object{success=bool,data=domain.Product}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{barcode} [get]
func (h *ProductHandler) GetProductDoc() {}

// UpdateProduct godoc
// @Summary Update a product
// @Description Partial update of a product owned by the caller's store
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param barcode path string true "Barcode"
// @Param request body object{name=string,brand=string,category=string,price=number} true "Fields to change"
// @Success 200 {object} object{success=bool,message=string,data=domain.Product}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{barcode} [put]
func (h *ProductHandler) UpdateProductDoc() {}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{barcode} [delete]
func (h *ProductHandler) DeleteProductDoc() {}

// ListByStore godoc
// @Summary List products of a store
// @Tags Stores
// @Produce json
// @Param storeId path string true "Store ID"
// @Success 200 {object} object{success=bool,data=[]domain.Product}
// @Router /api/stores/{storeId}/products [get]
func (h *ProductHandler) ListByStoreDoc() {}

// Favorites godoc
// @Summary List the caller's favorite products
// @Tags Favorites
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=[]domain.Product}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/favorites [get]
func (h *ProductHandler) ListFavoritesDoc() {}

// AddFavorite godoc
// @Summary Add a product to favorites
// @Tags Favorites
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{barcode=string} true "Barcode"
// @Success 201 {object} object{success=bool,data=domain.FavoriteProduct}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/favorites [post]
func (h *ProductHandler) AddFavoriteDoc() {}

// TopScans godoc
// @Summary Most scanned barcodes
// @Tags Scans
// @Produce json
// @Param limit query int false "Limit"
// @Success 200 {object} object{success=bool,data=[]domain.ScanStat}
// @Router /api/scans/top [get]
func (h *ProductHandler) TopScansDoc() {}
