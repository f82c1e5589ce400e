package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// Scan godoc
// @Summary Resolve a barcode
// @Description Looks the barcode up in the local table, the store catalog and Open Food Facts, in that order
// @Tags Scanner
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} object{success=bool,data=domain.Product}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/scan/{barcode} [get]
func (h *ScanHandler) ScanDoc() {}

// GetHistory godoc
// @Summary Recent scans
// @Tags Scanner
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=[]string}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/scan/history [get]
func (h *ScanHandler) GetHistoryDoc() {}

// ClearHistory godoc
// @Summary Clear recent scans
// @Tags Scanner
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Router /api/scan/history [delete]
func (h *ScanHandler) ClearHistoryDoc() {}
