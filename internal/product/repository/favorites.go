package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/freshsave/internal/product/domain"
)

type GormFavoriteRepository struct {
	db *gorm.DB
}

func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// Add inserts the favorite, leaving an existing (user, barcode) row untouched.
func (r *GormFavoriteRepository) Add(ctx context.Context, favorite *domain.FavoriteProduct) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_barcode"}},
			DoNothing: true,
		}).
		Create(favorite).Error
}

func (r *GormFavoriteRepository) Find(ctx context.Context, userID, barcode string) (*domain.FavoriteProduct, error) {
	var favorite domain.FavoriteProduct
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_barcode = ?", userID, barcode).
		First(&favorite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrFavoriteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *GormFavoriteRepository) Remove(ctx context.Context, userID, barcode string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_barcode = ?", userID, barcode).
		Delete(&domain.FavoriteProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *GormFavoriteRepository) ListBarcodes(ctx context.Context, userID string) ([]string, error) {
	var barcodes []string
	err := r.db.WithContext(ctx).
		Model(&domain.FavoriteProduct{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("product_barcode", &barcodes).Error
	return barcodes, err
}

type GormScanStatRepository struct {
	db *gorm.DB
}

func NewGormScanStatRepository(db *gorm.DB) *GormScanStatRepository {
	return &GormScanStatRepository{db: db}
}

// Record upserts the aggregate row for the scanned barcode.
func (r *GormScanStatRepository) Record(ctx context.Context, record domain.ScanRecord) error {
	stat := domain.ScanStat{
		Barcode:        record.Barcode,
		Scans:          1,
		LookupFailures: int64(record.Failures),
		LastSource:     record.Source,
		LastScannedAt:  record.ScannedAt,
	}
	found, notFound := 0, 0
	if record.Outcome == domain.ScanOutcomeFound {
		stat.Found, found = 1, 1
	} else {
		stat.NotFound, notFound = 1, 1
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "barcode"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"scans":           gorm.Expr("scan_stats.scans + 1"),
				"found":           gorm.Expr("scan_stats.found + ?", found),
				"not_found":       gorm.Expr("scan_stats.not_found + ?", notFound),
				"lookup_failures": gorm.Expr("scan_stats.lookup_failures + ?", record.Failures),
				"last_source":     record.Source,
				"last_scanned_at": record.ScannedAt,
			}),
		}).
		Create(&stat).Error
}

func (r *GormScanStatRepository) Top(ctx context.Context, limit int) ([]domain.ScanStat, error) {
	var stats []domain.ScanStat
	err := r.db.WithContext(ctx).Order("scans DESC, barcode").Limit(limit).Find(&stats).Error
	return stats, err
}
