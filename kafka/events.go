package kafka

import (
	"time"

	"github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/internal/scanner"
)

// ProductScannedEvent is published after every barcode resolution
type ProductScannedEvent struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`
	Barcode        string          `json:"barcode"`
	Outcome        string          `json:"outcome"`
	Source         string          `json:"source,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	LookupFailures int             `json:"lookup_failures"`
	Failures       []LookupFailure `json:"failures,omitempty"`
	DurationMs     int64           `json:"duration_ms"`
	Timestamp      time.Time       `json:"timestamp"`
}

// LookupFailure is one source miss inside a resolution.
type LookupFailure struct {
	Source string `json:"source"`
	Kind   string `json:"kind"`
}

// Event types
const (
	EventTypeProductScanned = "product.scanned"
)

// Kafka topics
const (
	TopicProductScanned = "product-scanned"
)

// NewProductScannedEvent converts a resolver report into an event.
func NewProductScannedEvent(report scanner.Report, userID string) ProductScannedEvent {
	event := ProductScannedEvent{
		EventType:      EventTypeProductScanned,
		Barcode:        report.Barcode,
		Outcome:        string(report.Outcome),
		Source:         report.Source,
		UserID:         userID,
		LookupFailures: report.LookupFailures(),
		DurationMs:     report.Duration.Milliseconds(),
	}
	for _, f := range report.Failures {
		event.Failures = append(event.Failures, LookupFailure{Source: f.Source, Kind: string(f.Kind)})
	}
	return event
}

// ScanRecord is the catalog's view of the event.
func (e ProductScannedEvent) ScanRecord() domain.ScanRecord {
	return domain.ScanRecord{
		Barcode:   e.Barcode,
		Outcome:   e.Outcome,
		Source:    e.Source,
		Failures:  e.LookupFailures,
		ScannedAt: e.Timestamp,
	}
}
