package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tair/freshsave/internal/product/domain"
)

// MemoryProductRepository is a map backed ProductRepository for tests and
// local development without PostgreSQL.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewMemoryProductRepository(seed ...domain.Product) *MemoryProductRepository {
	r := &MemoryProductRepository{products: make(map[string]*domain.Product)}
	for i := range seed {
		r.products[seed[i].Barcode] = seed[i].Clone()
	}
	return r
}

func (r *MemoryProductRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.Barcode]; ok {
		return domain.ErrBarcodeTaken
	}
	r.products[product.Barcode] = product.Clone()
	return nil
}

func (r *MemoryProductRepository) FindByBarcode(_ context.Context, barcode string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[barcode]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryProductRepository) Search(_ context.Context, query string, limit int) ([]domain.Product, error) {
	q := strings.ToLower(query)
	return r.filter(func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			strings.Contains(p.Barcode, q)
	}, byName, limit, 0), nil
}

func (r *MemoryProductRepository) FindByCategory(_ context.Context, category string, limit, offset int) ([]domain.Product, error) {
	return r.filter(func(p *domain.Product) bool { return p.Category == category }, byName, limit, offset), nil
}

func (r *MemoryProductRepository) FindByStore(_ context.Context, storeID string, limit, offset int) ([]domain.Product, error) {
	return r.filter(func(p *domain.Product) bool { return p.StoreID == storeID }, byUpdatedDesc, limit, offset), nil
}

func (r *MemoryProductRepository) FindByBarcodes(_ context.Context, barcodes []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(barcodes))
	for _, b := range barcodes {
		if p, ok := r.products[b]; ok {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.Barcode]; !ok {
		return domain.ErrProductNotFound
	}
	r.products[product.Barcode] = product.Clone()
	return nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, barcode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[barcode]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, barcode)
	return nil
}

func (r *MemoryProductRepository) CountByStore(_ context.Context, storeID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.products {
		if p.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryProductRepository) StoreCategories(_ context.Context, storeID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := make(map[string]struct{})
	for _, p := range r.products {
		if p.StoreID == storeID {
			set[p.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(set))
	for c := range set {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *MemoryProductRepository) LastUpdatedInStore(_ context.Context, storeID string) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var last *time.Time
	for _, p := range r.products {
		if p.StoreID != storeID {
			continue
		}
		if last == nil || p.UpdatedAt.After(*last) {
			t := p.UpdatedAt
			last = &t
		}
	}
	return last, nil
}

func byName(a, b *domain.Product) bool { return a.Name < b.Name }

func byUpdatedDesc(a, b *domain.Product) bool { return a.UpdatedAt.After(b.UpdatedAt) }

func (r *MemoryProductRepository) filter(keep func(*domain.Product) bool, less func(a, b *domain.Product) bool, limit, offset int) []domain.Product {
	r.mu.RLock()
	matched := make([]*domain.Product, 0)
	for _, p := range r.products {
		if keep(p) {
			matched = append(matched, p.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
	if offset >= len(matched) {
		return []domain.Product{}
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	out := make([]domain.Product, len(matched))
	for i, p := range matched {
		out[i] = *p
	}
	return out
}

// MemoryFavoriteRepository keeps favorites in insertion order.
type MemoryFavoriteRepository struct {
	mu        sync.Mutex
	favorites []domain.FavoriteProduct
}

func NewMemoryFavoriteRepository() *MemoryFavoriteRepository {
	return &MemoryFavoriteRepository{}
}

func (r *MemoryFavoriteRepository) Add(_ context.Context, favorite *domain.FavoriteProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.UserID == favorite.UserID && f.ProductBarcode == favorite.ProductBarcode {
			return nil
		}
	}
	r.favorites = append(r.favorites, *favorite)
	return nil
}

func (r *MemoryFavoriteRepository) Find(_ context.Context, userID, barcode string) (*domain.FavoriteProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.UserID == userID && f.ProductBarcode == barcode {
			fav := f
			return &fav, nil
		}
	}
	return nil, domain.ErrFavoriteNotFound
}

func (r *MemoryFavoriteRepository) Remove(_ context.Context, userID, barcode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.favorites {
		if f.UserID == userID && f.ProductBarcode == barcode {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return nil
		}
	}
	return domain.ErrFavoriteNotFound
}

// ListBarcodes returns the newest favorite first.
func (r *MemoryFavoriteRepository) ListBarcodes(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for i := len(r.favorites) - 1; i >= 0; i-- {
		if r.favorites[i].UserID == userID {
			out = append(out, r.favorites[i].ProductBarcode)
		}
	}
	return out, nil
}

// MemoryScanStatRepository aggregates scan records in memory.
type MemoryScanStatRepository struct {
	mu    sync.Mutex
	stats map[string]*domain.ScanStat
}

func NewMemoryScanStatRepository() *MemoryScanStatRepository {
	return &MemoryScanStatRepository{stats: make(map[string]*domain.ScanStat)}
}

func (r *MemoryScanStatRepository) Record(_ context.Context, record domain.ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stat, ok := r.stats[record.Barcode]
	if !ok {
		stat = &domain.ScanStat{Barcode: record.Barcode}
		r.stats[record.Barcode] = stat
	}
	stat.Scans++
	if record.Outcome == domain.ScanOutcomeFound {
		stat.Found++
	} else {
		stat.NotFound++
	}
	stat.LookupFailures += int64(record.Failures)
	stat.LastSource = record.Source
	stat.LastScannedAt = record.ScannedAt
	return nil
}

func (r *MemoryScanStatRepository) Top(_ context.Context, limit int) ([]domain.ScanStat, error) {
	r.mu.Lock()
	out := make([]domain.ScanStat, 0, len(r.stats))
	for _, s := range r.stats {
		out = append(out, *s)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Scans != out[j].Scans {
			return out[i].Scans > out[j].Scans
		}
		return out[i].Barcode < out[j].Barcode
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
