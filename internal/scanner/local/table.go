// Package local holds the offline product table the resolver consults first.
package local

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tair/freshsave/internal/product/domain"
)

//go:embed products.json
var defaultProducts []byte

// Table is an immutable barcode index. Get hands out copies, so callers may
// modify what they receive.
type Table struct {
	products map[string]*domain.Product
}

// New builds a table. Blank or duplicate barcodes are rejected.
func New(products []domain.Product) (*Table, error) {
	t := &Table{products: make(map[string]*domain.Product, len(products))}
	for i := range products {
		barcode := strings.TrimSpace(products[i].Barcode)
		if barcode == "" {
			return nil, fmt.Errorf("product %d: missing barcode", i)
		}
		if _, ok := t.products[barcode]; ok {
			return nil, fmt.Errorf("duplicate barcode %q", barcode)
		}
		p := products[i].Clone()
		p.Barcode = barcode
		t.products[barcode] = p
	}
	return t, nil
}

// Load decodes a JSON array of canonical products.
func Load(r io.Reader) (*Table, error) {
	var products []domain.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode product table: %w", err)
	}
	return New(products)
}

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	return Load(bytes.NewReader(defaultProducts))
}

func (t *Table) Get(barcode string) (*domain.Product, bool) {
	p, ok := t.products[barcode]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (t *Table) Len() int {
	return len(t.products)
}
