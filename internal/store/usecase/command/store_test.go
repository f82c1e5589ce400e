package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/freshsave/internal/store/domain"
	"github.com/tair/freshsave/internal/store/repository"
)

func strPtr(s string) *string { return &s }

func TestCreateStore(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryStoreRepository()
	h := NewCreateStoreHandler(repo)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = func() time.Time { return now }

	store, err := h.Handle(ctx, CreateStoreCommand{
		ID:          "store-1",
		AdminID:     "admin-1",
		Name:        " Green Grocer ",
		ContactInfo: domain.ContactInfo{Email: "hello@green.example"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Green Grocer", store.Name)
	assert.Equal(t, now, store.CreatedAt)

	_, err = h.Handle(ctx, CreateStoreCommand{
		AdminID:     "admin-1",
		Name:        "Second",
		ContactInfo: domain.ContactInfo{Email: "x@y.example"},
	})
	assert.ErrorIs(t, err, domain.ErrStoreExists)

	generated, err := h.Handle(ctx, CreateStoreCommand{
		AdminID:     "admin-2",
		Name:        "Corner Shop",
		ContactInfo: domain.ContactInfo{Email: "corner@shop.example"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)
}

func TestCreateStoreValidation(t *testing.T) {
	h := NewCreateStoreHandler(repository.NewMemoryStoreRepository())
	for name, cmd := range map[string]CreateStoreCommand{
		"no admin":  {Name: "a", ContactInfo: domain.ContactInfo{Email: "a@b.example"}},
		"no name":   {AdminID: "1", ContactInfo: domain.ContactInfo{Email: "a@b.example"}},
		"no email":  {AdminID: "1", Name: "a"},
		"bad email": {AdminID: "1", Name: "a", ContactInfo: domain.ContactInfo{Email: "not-an-email"}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), cmd)
			assert.ErrorIs(t, err, domain.ErrInvalidStore)
		})
	}
}

func TestUpdateStore(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryStoreRepository(domain.Store{
		ID: "s1", AdminID: "a1", Name: "Old", ContactInfo: domain.ContactInfo{Email: "old@shop.example", Phone: "123"},
	})
	h := NewUpdateStoreHandler(repo)

	store, err := h.Handle(ctx, UpdateStoreCommand{StoreID: "s1", AdminID: "a1", Name: strPtr("New"), Address: strPtr("1 Main St")})
	require.NoError(t, err)
	assert.Equal(t, "New", store.Name)
	assert.Equal(t, "123", store.ContactInfo.Phone)
	assert.Equal(t, "1 Main St", store.ContactInfo.Address)

	_, err = h.Handle(ctx, UpdateStoreCommand{StoreID: "s1", AdminID: "intruder", Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotStoreOwner)

	_, err = h.Handle(ctx, UpdateStoreCommand{StoreID: "s1", AdminID: "a1", Email: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrInvalidStore)

	_, err = h.Handle(ctx, UpdateStoreCommand{StoreID: "nope", AdminID: "a1"})
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}
