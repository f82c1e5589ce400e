package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tair/freshsave/internal/product/domain"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Product{}, &domain.FavoriteProduct{}, &domain.ScanStat{})
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrBarcodeTaken
	}
	return err
}

func (r *GormProductRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	pattern := "%" + escapeLike(query) + "%"
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR brand ILIKE ? OR barcode ILIKE ?", pattern, pattern, pattern).
		Order("name").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *GormProductRepository) FindByCategory(ctx context.Context, category string, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Where("category = ?", category).Order("name").Limit(limit).Offset(offset).Find(&products).Error
	return products, err
}

func (r *GormProductRepository) FindByStore(ctx context.Context, storeID string, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("updated_at DESC").Limit(limit).Offset(offset).Find(&products).Error
	return products, err
}

func (r *GormProductRepository) FindByBarcodes(ctx context.Context, barcodes []string) ([]domain.Product, error) {
	if len(barcodes) == 0 {
		return []domain.Product{}, nil
	}
	var products []domain.Product
	err := r.db.WithContext(ctx).Where("barcode IN ?", barcodes).Find(&products).Error
	return products, err
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, barcode string) error {
	res := r.db.WithContext(ctx).Where("barcode = ?", barcode).Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) CountByStore(ctx context.Context, storeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("store_id = ?", storeID).Count(&count).Error
	return count, err
}

func (r *GormProductRepository) StoreCategories(ctx context.Context, storeID string) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("store_id = ?", storeID).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *GormProductRepository) LastUpdatedInStore(ctx context.Context, storeID string) (*time.Time, error) {
	var last sql.NullTime
	row := r.db.WithContext(ctx).Model(&domain.Product{}).Where("store_id = ?", storeID).Select("MAX(updated_at)").Row()
	if err := row.Scan(&last); err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
