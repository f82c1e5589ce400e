package repository

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/tair/freshsave/internal/store/domain"
)

type GormStoreRepository struct {
	db *gorm.DB
}

func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

func (r *GormStoreRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Store{})
}

func (r *GormStoreRepository) Create(ctx context.Context, store *domain.Store) error {
	err := r.db.WithContext(ctx).Create(store).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrStoreExists
	}
	return err
}

func (r *GormStoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormStoreRepository) FindByAdmin(ctx context.Context, adminID string) (*domain.Store, error) {
	return r.first(ctx, "admin_id = ?", adminID)
}

func (r *GormStoreRepository) first(ctx context.Context, cond string, arg string) (*domain.Store, error) {
	var store domain.Store
	err := r.db.WithContext(ctx).Where(cond, arg).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *GormStoreRepository) Update(ctx context.Context, store *domain.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

// MemoryStoreRepository is the in-process StoreRepository used by tests.
type MemoryStoreRepository struct {
	mu     sync.RWMutex
	stores map[string]domain.Store
}

func NewMemoryStoreRepository(seed ...domain.Store) *MemoryStoreRepository {
	r := &MemoryStoreRepository{stores: make(map[string]domain.Store)}
	for _, s := range seed {
		r.stores[s.ID] = s
	}
	return r
}

func (r *MemoryStoreRepository) Create(_ context.Context, store *domain.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if s.AdminID == store.AdminID || s.ID == store.ID {
			return domain.ErrStoreExists
		}
	}
	r.stores[store.ID] = *store
	return nil
}

func (r *MemoryStoreRepository) FindByID(_ context.Context, id string) (*domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	return &s, nil
}

func (r *MemoryStoreRepository) FindByAdmin(_ context.Context, adminID string) (*domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.stores {
		if s.AdminID == adminID {
			found := s
			return &found, nil
		}
	}
	return nil, domain.ErrStoreNotFound
}

func (r *MemoryStoreRepository) Update(_ context.Context, store *domain.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[store.ID]; !ok {
		return domain.ErrStoreNotFound
	}
	r.stores[store.ID] = *store
	return nil
}
