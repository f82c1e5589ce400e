package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/internal/scanner"
	"github.com/tair/freshsave/pkg/logger"
	"github.com/tair/freshsave/pkg/middleware"
	"github.com/tair/freshsave/pkg/response"
)

// Resolver is satisfied by *scanner.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, barcode string) (*domain.Product, error)
}

// History is satisfied by *history.Store.
type History interface {
	Add(ctx context.Context, userID, barcode string) error
	List(ctx context.Context, userID string) ([]string, error)
	Clear(ctx context.Context, userID string) error
}

// ScanHandler serves barcode scans and the caller's scan history
type ScanHandler struct {
	resolver Resolver
	history  History
	auth     *middleware.Authenticator
	metrics  *middleware.HTTPMetrics
}

func NewScanHandler(resolver Resolver, history History, auth *middleware.Authenticator, metrics *middleware.HTTPMetrics) *ScanHandler {
	return &ScanHandler{resolver: resolver, history: history, auth: auth, metrics: metrics}
}

func (h *ScanHandler) RegisterRoutes(router *mux.Router) {
	m := h.metrics.Instrument

	// history before {barcode} so it is not captured as a barcode
	router.HandleFunc("/api/scan/history", m("/api/scan/history", h.auth.Required(h.GetHistory))).Methods("GET")
	router.HandleFunc("/api/scan/history", m("/api/scan/history", h.auth.Required(h.ClearHistory))).Methods("DELETE")
	router.HandleFunc("/api/scan/{barcode}", m("/api/scan/{barcode}", h.auth.Optional(h.Scan))).Methods("GET")
}

// Scan handles GET /api/scan/{barcode}
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := h.resolver.Resolve(ctx, mux.Vars(r)["barcode"])
	switch {
	case errors.Is(err, scanner.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, scanner.ErrProductNotFound):
		response.Error(w, http.StatusNotFound, "Product not found")
		return
	case err != nil:
		logger.WithContext(ctx).Error().Err(err).Msg("Failed to resolve barcode")
		response.Error(w, http.StatusInternalServerError, "Failed to resolve barcode")
		return
	}

	if claims, ok := middleware.ClaimsFromContext(ctx); ok && h.history != nil {
		if err := h.history.Add(ctx, claims.UserID, product.Barcode); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("user_id", claims.UserID).Msg("Scan history not updated")
		}
	}

	response.OK(w, product)
}

// GetHistory handles GET /api/scan/history
func (h *ScanHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	barcodes, err := h.history.List(r.Context(), claims.UserID)
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to read scan history")
		response.Error(w, http.StatusInternalServerError, "Failed to read scan history")
		return
	}

	response.OK(w, barcodes)
}

// ClearHistory handles DELETE /api/scan/history
func (h *ScanHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	if err := h.history.Clear(r.Context(), claims.UserID); err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to clear scan history")
		response.Error(w, http.StatusInternalServerError, "Failed to clear scan history")
		return
	}

	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: "Scan history cleared"})
}

// RegisterHealthCheck reports unhealthy when ping fails. A nil ping always
// reports healthy.
func RegisterHealthCheck(router *mux.Router, service string, ping func(ctx context.Context) error) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "Redis unavailable")
				return
			}
		}
		response.JSON(w, http.StatusOK, response.Response{Success: true, Message: service + " is healthy"})
	}).Methods("GET")
}
