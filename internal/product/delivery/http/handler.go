package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/internal/product/usecase/command"
	"github.com/tair/freshsave/internal/product/usecase/query"
	"github.com/tair/freshsave/pkg/logger"
	"github.com/tair/freshsave/pkg/middleware"
	"github.com/tair/freshsave/pkg/response"
)

// ProductHandler handles HTTP requests for products using CQRS pattern
type ProductHandler struct {
	// Command handlers
	createHandler         *command.CreateProductHandler
	updateHandler         *command.UpdateProductHandler
	deleteHandler         *command.DeleteProductHandler
	addFavoriteHandler    *command.AddFavoriteHandler
	removeFavoriteHandler *command.RemoveFavoriteHandler

	// Query handlers
	getProductHandler *query.GetProductHandler
	listHandler       *query.ListProductsHandler
	favoritesHandler  *query.FavoritesHandler
	topScansHandler   *query.TopScansHandler

	auth    *middleware.Authenticator
	metrics *middleware.HTTPMetrics
}

// NewProductHandler creates a new product handler with manual wiring
func NewProductHandler(
	products domain.ProductRepository,
	favorites domain.FavoriteRepository,
	stats domain.ScanStatRepository,
	auth *middleware.Authenticator,
	metrics *middleware.HTTPMetrics,
) *ProductHandler {
	return NewProductHandlerWithDI(
		command.NewCreateProductHandler(products),
		command.NewUpdateProductHandler(products),
		command.NewDeleteProductHandler(products),
		command.NewAddFavoriteHandler(favorites, products),
		command.NewRemoveFavoriteHandler(favorites),
		query.NewGetProductHandler(products),
		query.NewListProductsHandler(products),
		query.NewFavoritesHandler(favorites, products),
		query.NewTopScansHandler(stats),
		auth,
		metrics,
	)
}

// NewProductHandlerWithDI creates a new product handler using dependency injection
// This is used by Wire for automatic dependency injection
func NewProductHandlerWithDI(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
	addFavoriteHandler *command.AddFavoriteHandler,
	removeFavoriteHandler *command.RemoveFavoriteHandler,
	getProductHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
	favoritesHandler *query.FavoritesHandler,
	topScansHandler *query.TopScansHandler,
	auth *middleware.Authenticator,
	metrics *middleware.HTTPMetrics,
) *ProductHandler {
	return &ProductHandler{
		createHandler:         createHandler,
		updateHandler:         updateHandler,
		deleteHandler:         deleteHandler,
		addFavoriteHandler:    addFavoriteHandler,
		removeFavoriteHandler: removeFavoriteHandler,
		getProductHandler:     getProductHandler,
		listHandler:           listHandler,
		favoritesHandler:      favoritesHandler,
		topScansHandler:       topScansHandler,
		auth:                  auth,
		metrics:               metrics,
	}
}

func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	m := h.metrics.Instrument

	// Public routes (no auth required). Literal segments go before {barcode}.
	router.HandleFunc("/api/products/search", m("/api/products/search", h.SearchProducts)).Methods("GET")
	router.HandleFunc("/api/products/category/{category}", m("/api/products/category/{category}", h.ListByCategory)).Methods("GET")
	router.HandleFunc("/api/products/{barcode}", m("/api/products/{barcode}", h.GetProduct)).Methods("GET")
	router.HandleFunc("/api/stores/{storeId}/products", m("/api/stores/{storeId}/products", h.ListByStore)).Methods("GET")
	router.HandleFunc("/api/scans/top", m("/api/scans/top", h.TopScans)).Methods("GET")

	// Store admin routes
	router.HandleFunc("/api/products", m("/api/products", h.auth.StoreAdmin(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/products/{barcode}", m("/api/products/{barcode}", h.auth.StoreAdmin(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/products/{barcode}", m("/api/products/{barcode}", h.auth.StoreAdmin(h.DeleteProduct))).Methods("DELETE")

	// Authenticated customer routes
	router.HandleFunc("/api/favorites", m("/api/favorites", h.auth.Required(h.ListFavorites))).Methods("GET")
	router.HandleFunc("/api/favorites", m("/api/favorites", h.auth.Required(h.AddFavorite))).Methods("POST")
	router.HandleFunc("/api/favorites/{barcode}", m("/api/favorites/{barcode}", h.auth.Required(h.IsFavorite))).Methods("GET")
	router.HandleFunc("/api/favorites/{barcode}", m("/api/favorites/{barcode}", h.auth.Required(h.RemoveFavorite))).Methods("DELETE")
}

type productRequest struct {
	Barcode         string                  `json:"barcode"`
	Name            *string                 `json:"name"`
	Brand           *string                 `json:"brand"`
	Category        *string                 `json:"category"`
	ImageURL        *string                 `json:"imageUrl"`
	Price           *float64                `json:"price"`
	Unit            *string                 `json:"unit"`
	Ingredients     []string                `json:"ingredients"`
	Allergens       []string                `json:"allergens"`
	NutritionalInfo *domain.NutritionalInfo `json:"nutritionalInfo"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.createHandler.Handle(r.Context(), command.CreateProductCommand{
		StoreID:         claims.StoreID,
		Barcode:         req.Barcode,
		Name:            deref(req.Name),
		Brand:           deref(req.Brand),
		Category:        deref(req.Category),
		ImageURL:        deref(req.ImageURL),
		Price:           req.Price,
		Unit:            deref(req.Unit),
		Ingredients:     req.Ingredients,
		Allergens:       req.Allergens,
		NutritionalInfo: req.NutritionalInfo,
	})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to create product")
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("barcode", product.Barcode).
		Str("store_id", product.StoreID).
		Msg("Product created")

	response.JSON(w, http.StatusCreated, response.Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// GetProduct handles GET /api/products/{barcode}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.getProductHandler.Handle(r.Context(), query.GetProductQuery{Barcode: mux.Vars(r)["barcode"]})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to get product")
		return
	}

	response.OK(w, product)
}

// SearchProducts handles GET /api/products/search?q=
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.listHandler.Search(r.Context(), query.SearchProductsQuery{
		Text:  r.URL.Query().Get("q"),
		Limit: limit,
	})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to search products")
		return
	}

	response.OK(w, products)
}

// ListByCategory handles GET /api/products/category/{category}
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	products, err := h.listHandler.ByCategory(r.Context(), query.ListByCategoryQuery{
		Category: mux.Vars(r)["category"],
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to list products")
		return
	}

	response.OK(w, products)
}

// ListByStore handles GET /api/stores/{storeId}/products
func (h *ProductHandler) ListByStore(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	products, err := h.listHandler.ByStore(r.Context(), query.ListByStoreQuery{
		StoreID: mux.Vars(r)["storeId"],
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to list store products")
		return
	}

	response.OK(w, products)
}

// UpdateProduct handles PUT /api/products/{barcode}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.updateHandler.Handle(r.Context(), command.UpdateProductCommand{
		StoreID:         claims.StoreID,
		Barcode:         mux.Vars(r)["barcode"],
		Name:            req.Name,
		Brand:           req.Brand,
		Category:        req.Category,
		ImageURL:        req.ImageURL,
		Price:           req.Price,
		Unit:            req.Unit,
		Ingredients:     req.Ingredients,
		Allergens:       req.Allergens,
		NutritionalInfo: req.NutritionalInfo,
	})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to update product")
		return
	}

	response.JSON(w, http.StatusOK, response.Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// DeleteProduct handles DELETE /api/products/{barcode}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	err := h.deleteHandler.Handle(r.Context(), command.DeleteProductCommand{
		StoreID: claims.StoreID,
		Barcode: mux.Vars(r)["barcode"],
	})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to delete product")
		return
	}

	response.JSON(w, http.StatusOK, response.Response{
		Success: true,
		Message: "Product deleted successfully",
	})
}

// ListFavorites handles GET /api/favorites
func (h *ProductHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	products, err := h.favoritesHandler.List(r.Context(), claims.UserID)
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to list favorites")
		return
	}

	response.OK(w, products)
}

// AddFavorite handles POST /api/favorites
func (h *ProductHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	favorite, err := h.addFavoriteHandler.Handle(r.Context(), command.AddFavoriteCommand{
		UserID:  claims.UserID,
		Barcode: req.Barcode,
	})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to add favorite")
		return
	}

	response.JSON(w, http.StatusCreated, response.Response{
		Success: true,
		Message: "Added to favorites",
		Data:    favorite,
	})
}

// IsFavorite handles GET /api/favorites/{barcode}
func (h *ProductHandler) IsFavorite(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	ok, err := h.favoritesHandler.IsFavorite(r.Context(), claims.UserID, mux.Vars(r)["barcode"])
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to check favorite")
		return
	}

	response.OK(w, map[string]bool{"isFavorite": ok})
}

// RemoveFavorite handles DELETE /api/favorites/{barcode}
func (h *ProductHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	err := h.removeFavoriteHandler.Handle(r.Context(), command.RemoveFavoriteCommand{
		UserID:  claims.UserID,
		Barcode: mux.Vars(r)["barcode"],
	})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to remove favorite")
		return
	}

	response.JSON(w, http.StatusOK, response.Response{
		Success: true,
		Message: "Removed from favorites",
	})
}

// TopScans handles GET /api/scans/top
func (h *ProductHandler) TopScans(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	stats, err := h.topScansHandler.Handle(r.Context(), query.TopScansQuery{Limit: limit})
	if err != nil {
		h.fail(r.Context(), w, err, "Failed to load scan statistics")
		return
	}

	response.OK(w, stats)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func RegisterHealthCheck(router *mux.Router, service string, db Pinger) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}

		response.JSON(w, http.StatusOK, response.Response{
			Success: true,
			Message: service + " is healthy",
		})
	}).Methods("GET")
}

// fail maps domain errors to status codes. Unexpected errors are logged and
// hidden behind message.
func (h *ProductHandler) fail(ctx context.Context, w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		response.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrFavoriteNotFound):
		response.Error(w, http.StatusNotFound, "Favorite not found")
	case errors.Is(err, domain.ErrBarcodeTaken):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidProduct):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		logger.WithContext(ctx).Error().Err(err).Msg(message)
		response.Error(w, http.StatusInternalServerError, message)
	}
}
