package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tair/freshsave/internal/product/domain"
)

// RecordScanHandler folds scanner events into the scan statistics
type RecordScanHandler struct {
	stats domain.ScanStatRepository
}

// NewRecordScanHandler creates a new record scan handler
func NewRecordScanHandler(stats domain.ScanStatRepository) *RecordScanHandler {
	return &RecordScanHandler{stats: stats}
}

// Handle records one scan. Events without a barcode are rejected.
func (h *RecordScanHandler) Handle(ctx context.Context, record domain.ScanRecord) error {
	record.Barcode = strings.TrimSpace(record.Barcode)
	if record.Barcode == "" {
		return fmt.Errorf("%w: scan without barcode", domain.ErrInvalidProduct)
	}
	if record.Outcome != domain.ScanOutcomeFound {
		record.Outcome = domain.ScanOutcomeNotFound
	}
	if record.Failures < 0 {
		record.Failures = 0
	}
	if record.ScannedAt.IsZero() {
		record.ScannedAt = time.Now().UTC()
	}

	if err := h.stats.Record(ctx, record); err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}
	return nil
}
