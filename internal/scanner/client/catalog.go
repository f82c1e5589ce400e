// Package client holds the HTTP clients behind the resolver's remote sources.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/internal/scanner"
)

const maxBodyBytes = 2 << 20

// NewHTTPClient returns a client whose transport emits client spans and
// propagates trace context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// CatalogClient reads canonical products from the catalog service.
type CatalogClient struct {
	baseURL string
	http    *http.Client
}

func NewCatalogClient(baseURL string, httpClient *http.Client) *CatalogClient {
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	return &CatalogClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ProductByBarcode calls GET /api/products/{barcode}. The body may be the
// {success,data} envelope or a bare product.
func (c *CatalogClient) ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	endpoint := c.baseURL + "/api/products/" + url.PathEscape(barcode)
	body, status, err := get(ctx, c.http, endpoint, nil)
	if err != nil {
		return nil, scanner.Miss(scanner.SourceCatalog, scanner.KindTransport, err)
	}

	switch {
	case status == http.StatusNotFound:
		return nil, scanner.Miss(scanner.SourceCatalog, scanner.KindNotFound, nil)
	case status >= 500:
		return nil, scanner.Miss(scanner.SourceCatalog, scanner.KindTransport, fmt.Errorf("status %d", status))
	case status != http.StatusOK:
		return nil, scanner.Miss(scanner.SourceCatalog, scanner.KindMalformed, fmt.Errorf("unexpected status %d", status))
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, scanner.Miss(scanner.SourceCatalog, scanner.KindNotFound, nil)
	}

	product, err := decodeCatalogProduct(body)
	if err != nil {
		return nil, scanner.Miss(scanner.SourceCatalog, scanner.KindMalformed, err)
	}
	if product == nil {
		return nil, scanner.Miss(scanner.SourceCatalog, scanner.KindNotFound, nil)
	}
	if product.Barcode != barcode {
		return nil, scanner.Miss(scanner.SourceCatalog, scanner.KindMalformed, fmt.Errorf("asked for %q, got %q", barcode, product.Barcode))
	}
	return product, nil
}

func decodeCatalogProduct(body []byte) (*domain.Product, error) {
	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if envelope.Success != nil {
		data := bytes.TrimSpace(envelope.Data)
		if !*envelope.Success || len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return nil, nil
		}
		body = data
	}

	var product domain.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("decode catalog product: %w", err)
	}
	if strings.TrimSpace(product.Barcode) == "" {
		return nil, errors.New("catalog product without barcode")
	}
	return &product, nil
}

func get(ctx context.Context, c *http.Client, endpoint string, header http.Header) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
