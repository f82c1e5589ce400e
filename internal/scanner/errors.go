package scanner

import (
	"errors"
	"fmt"

	"github.com/tair/freshsave/internal/product/domain"
)

var (
	// ErrInvalidInput is returned for empty or whitespace-only barcodes.
	ErrInvalidInput = errors.New("barcode is required")

	// ErrProductNotFound is returned once every source has missed.
	ErrProductNotFound = domain.ErrProductNotFound
)

// Sources, in resolution order.
const (
	SourceLocal         = "local"
	SourceCatalog       = "catalog"
	SourceOpenFoodFacts = "openfoodfacts"
)

// Kind classifies why a source missed.
type Kind string

const (
	KindTransport Kind = "transport"
	KindNotFound  Kind = "not_found"
	KindMalformed Kind = "malformed"
)

// ResolutionError records a miss at one source. It never reaches callers of
// Resolve; it is logged, counted and reported to the Observer.
type ResolutionError struct {
	Source string
	Kind   Kind
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s lookup: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s lookup: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Miss builds a ResolutionError.
func Miss(source string, kind Kind, err error) *ResolutionError {
	return &ResolutionError{Source: source, Kind: kind, Err: err}
}

// classify turns any lookup error into a ResolutionError for source.
// Errors that carry no classification count as transport failures.
func classify(source string, err error) *ResolutionError {
	var re *ResolutionError
	if errors.As(err, &re) {
		if re.Source == "" {
			re.Source = source
		}
		return re
	}
	return Miss(source, KindTransport, err)
}
