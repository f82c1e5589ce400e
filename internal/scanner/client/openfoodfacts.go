package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tair/freshsave/internal/scanner"
)

const (
	DefaultOpenFoodFactsURL = "https://world.openfoodfacts.org"
	userAgent               = "FreshSave/1.0 (+https://freshsave.app)"
)

// OpenFoodFactsClient queries the public product database. All calls share
// one token bucket so concurrent resolutions stay within the provider quota.
type OpenFoodFactsClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewOpenFoodFactsClient allows perMinute requests per minute with a burst of
// up to 10.
func NewOpenFoodFactsClient(baseURL string, perMinute int, httpClient *http.Client) *OpenFoodFactsClient {
	if baseURL == "" {
		baseURL = DefaultOpenFoodFactsURL
	}
	if perMinute <= 0 {
		perMinute = 100
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	burst := 10
	if perMinute < burst {
		burst = perMinute
	}
	return &OpenFoodFactsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
}

// ProductByBarcode calls GET /api/v0/product/{barcode}.json.
func (c *OpenFoodFactsClient) ProductByBarcode(ctx context.Context, barcode string) (*scanner.ExternalProduct, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, scanner.Miss(scanner.SourceOpenFoodFacts, scanner.KindTransport, fmt.Errorf("rate limiter: %w", err))
	}

	endpoint := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))
	body, status, err := get(ctx, c.http, endpoint, http.Header{"User-Agent": {userAgent}})
	if err != nil {
		return nil, scanner.Miss(scanner.SourceOpenFoodFacts, scanner.KindTransport, err)
	}

	switch {
	case status == http.StatusNotFound:
		return nil, scanner.Miss(scanner.SourceOpenFoodFacts, scanner.KindNotFound, nil)
	case status >= 500 || status == http.StatusTooManyRequests:
		return nil, scanner.Miss(scanner.SourceOpenFoodFacts, scanner.KindTransport, fmt.Errorf("status %d", status))
	case status != http.StatusOK:
		return nil, scanner.Miss(scanner.SourceOpenFoodFacts, scanner.KindMalformed, fmt.Errorf("unexpected status %d", status))
	}

	var envelope scanner.ExternalResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, scanner.Miss(scanner.SourceOpenFoodFacts, scanner.KindMalformed, fmt.Errorf("decode response: %w", err))
	}
	if envelope.Status != 1 || envelope.Product == nil {
		return nil, scanner.Miss(scanner.SourceOpenFoodFacts, scanner.KindNotFound, nil)
	}
	return envelope.Product, nil
}
