package domain

import (
	"context"
	"time"
)

// Scan outcomes reported by the scanner service.
const (
	ScanOutcomeFound    = "found"
	ScanOutcomeNotFound = "not_found"
)

// ScanStat aggregates scanner activity for one barcode.
type ScanStat struct {
	Barcode        string    `json:"barcode" gorm:"primaryKey"`
	Scans          int64     `json:"scans" gorm:"not null;default:0;index"`
	Found          int64     `json:"found" gorm:"not null;default:0"`
	NotFound       int64     `json:"notFound" gorm:"not null;default:0"`
	LookupFailures int64     `json:"lookupFailures" gorm:"not null;default:0"`
	LastSource     string    `json:"lastSource,omitempty"`
	LastScannedAt  time.Time `json:"lastScannedAt"`
}

// TableName specifies the table name
func (ScanStat) TableName() string {
	return "scan_stats"
}

// ScanRecord is one observed resolution.
type ScanRecord struct {
	Barcode   string
	Outcome   string
	Source    string
	Failures  int
	ScannedAt time.Time
}

// ScanStatRepository defines the contract for scan statistics
type ScanStatRepository interface {
	Record(ctx context.Context, record ScanRecord) error
	Top(ctx context.Context, limit int) ([]ScanStat, error)
}
