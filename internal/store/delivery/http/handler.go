package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/freshsave/internal/store/domain"
	"github.com/tair/freshsave/internal/store/usecase/command"
	"github.com/tair/freshsave/internal/store/usecase/query"
	"github.com/tair/freshsave/pkg/logger"
	"github.com/tair/freshsave/pkg/middleware"
	"github.com/tair/freshsave/pkg/response"
)

// StoreHandler handles HTTP requests for store profiles
type StoreHandler struct {
	createHandler *command.CreateStoreHandler
	updateHandler *command.UpdateStoreHandler
	getHandler    *query.GetStoreHandler
	statsHandler  *query.GetStatsHandler

	auth    *middleware.Authenticator
	metrics *middleware.HTTPMetrics
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(
	createHandler *command.CreateStoreHandler,
	updateHandler *command.UpdateStoreHandler,
	getHandler *query.GetStoreHandler,
	statsHandler *query.GetStatsHandler,
	auth *middleware.Authenticator,
	metrics *middleware.HTTPMetrics,
) *StoreHandler {
	return &StoreHandler{
		createHandler: createHandler,
		updateHandler: updateHandler,
		getHandler:    getHandler,
		statsHandler:  statsHandler,
		auth:          auth,
		metrics:       metrics,
	}
}

// RegisterRoutes must run before the product routes so that
// /api/stores/admin/{adminId} wins over /api/stores/{storeId}/products.
func (h *StoreHandler) RegisterRoutes(router *mux.Router) {
	m := h.metrics.Instrument

	router.HandleFunc("/api/stores", m("/api/stores", h.auth.StoreAdmin(h.CreateStore))).Methods("POST")
	router.HandleFunc("/api/stores/admin/{adminId}", m("/api/stores/admin/{adminId}", h.GetStoreByAdmin)).Methods("GET")
	router.HandleFunc("/api/stores/{storeId}/stats", m("/api/stores/{storeId}/stats", h.GetStats)).Methods("GET")
	router.HandleFunc("/api/stores/{storeId}", m("/api/stores/{storeId}", h.GetStore)).Methods("GET")
	router.HandleFunc("/api/stores/{storeId}", m("/api/stores/{storeId}", h.auth.StoreAdmin(h.UpdateStore))).Methods("PUT")
}

// CreateStore handles POST /api/stores
func (h *StoreHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req struct {
		Name        string             `json:"name"`
		Logo        string             `json:"logo"`
		ContactInfo domain.ContactInfo `json:"contactInfo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	store, err := h.createHandler.Handle(r.Context(), command.CreateStoreCommand{
		ID:          claims.StoreID,
		AdminID:     claims.UserID,
		Name:        req.Name,
		Logo:        req.Logo,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		fail(r.Context(), w, err, "Failed to create store")
		return
	}

	response.JSON(w, http.StatusCreated, response.Response{
		Success: true,
		Message: "Store created successfully",
		Data:    store,
	})
}

// GetStore handles GET /api/stores/{storeId}
func (h *StoreHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	store, err := h.getHandler.ByID(r.Context(), mux.Vars(r)["storeId"])
	if err != nil {
		fail(r.Context(), w, err, "Failed to get store")
		return
	}
	response.OK(w, store)
}

// GetStoreByAdmin handles GET /api/stores/admin/{adminId}
func (h *StoreHandler) GetStoreByAdmin(w http.ResponseWriter, r *http.Request) {
	store, err := h.getHandler.ByAdmin(r.Context(), mux.Vars(r)["adminId"])
	if err != nil {
		fail(r.Context(), w, err, "Failed to get store")
		return
	}
	response.OK(w, store)
}

// UpdateStore handles PUT /api/stores/{storeId}
func (h *StoreHandler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req struct {
		Name        *string `json:"name"`
		Logo        *string `json:"logo"`
		ContactInfo *struct {
			Email   *string `json:"email"`
			Phone   *string `json:"phone"`
			Address *string `json:"address"`
		} `json:"contactInfo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateStoreCommand{
		StoreID: mux.Vars(r)["storeId"],
		AdminID: claims.UserID,
		Name:    req.Name,
		Logo:    req.Logo,
	}
	if req.ContactInfo != nil {
		cmd.Email = req.ContactInfo.Email
		cmd.Phone = req.ContactInfo.Phone
		cmd.Address = req.ContactInfo.Address
	}

	store, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		fail(r.Context(), w, err, "Failed to update store")
		return
	}

	response.JSON(w, http.StatusOK, response.Response{
		Success: true,
		Message: "Store updated successfully",
		Data:    store,
	})
}

// GetStats handles GET /api/stores/{storeId}/stats
func (h *StoreHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context(), mux.Vars(r)["storeId"])
	if err != nil {
		fail(r.Context(), w, err, "Failed to get store statistics")
		return
	}
	response.OK(w, stats)
}

func fail(ctx context.Context, w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrStoreNotFound):
		response.Error(w, http.StatusNotFound, "Store not found")
	case errors.Is(err, domain.ErrStoreExists):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotStoreOwner):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidStore):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		logger.WithContext(ctx).Error().Err(err).Msg(message)
		response.Error(w, http.StatusInternalServerError, message)
	}
}

// CreateStore godoc
// @Summary Register the caller's store
// @Tags Stores
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string,logo=string,contactInfo=domain.ContactInfo} true "Store data"
// @Success 201 {object} object{success=bool,data=domain.Store}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/stores [post]
func (h *StoreHandler) CreateStoreDoc() {}

// GetStats godoc
// @Summary Store catalog statistics
// @Tags Stores
// @Produce json
// @Param storeId path string true "Store ID"
// @Success 200 {object} object{success=bool,data=domain.Stats}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/stores/{storeId}/stats [get]
func (h *StoreHandler) GetStatsDoc() {}
