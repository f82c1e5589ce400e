package query

import (
	"context"
	"fmt"

	"github.com/tair/freshsave/internal/product/domain"
)

// TopScansQuery asks for the most scanned barcodes
type TopScansQuery struct {
	Limit int
}

// TopScansHandler handles top scans query
type TopScansHandler struct {
	stats domain.ScanStatRepository
}

// NewTopScansHandler creates a new top scans handler
func NewTopScansHandler(stats domain.ScanStatRepository) *TopScansHandler {
	return &TopScansHandler{stats: stats}
}

func (h *TopScansHandler) Handle(ctx context.Context, query TopScansQuery) ([]domain.ScanStat, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	stats, err := h.stats.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load scan stats: %w", err)
	}
	if stats == nil {
		stats = []domain.ScanStat{}
	}
	return stats, nil
}
