package command

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tair/freshsave/internal/store/domain"
)

// CreateStoreCommand represents the command to register a store
type CreateStoreCommand struct {
	ID          string
	AdminID     string
	Name        string
	Logo        string
	ContactInfo domain.ContactInfo
}

// CreateStoreHandler handles store creation command
type CreateStoreHandler struct {
	repo domain.StoreRepository
	now  func() time.Time
}

// NewCreateStoreHandler creates a new create store handler
func NewCreateStoreHandler(repo domain.StoreRepository) *CreateStoreHandler {
	return &CreateStoreHandler{repo: repo, now: time.Now}
}

// Handle executes the create store command. One store per admin.
func (h *CreateStoreHandler) Handle(ctx context.Context, cmd CreateStoreCommand) (*domain.Store, error) {
	if cmd.AdminID == "" {
		return nil, fmt.Errorf("%w: admin is required", domain.ErrInvalidStore)
	}
	if err := validate(cmd.Name, cmd.ContactInfo); err != nil {
		return nil, err
	}

	if _, err := h.repo.FindByAdmin(ctx, cmd.AdminID); err == nil {
		return nil, domain.ErrStoreExists
	} else if !errors.Is(err, domain.ErrStoreNotFound) {
		return nil, fmt.Errorf("failed to check admin store: %w", err)
	}

	id := cmd.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := h.now()
	store := &domain.Store{
		ID:          id,
		Name:        strings.TrimSpace(cmd.Name),
		Logo:        cmd.Logo,
		ContactInfo: cmd.ContactInfo,
		AdminID:     cmd.AdminID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.Create(ctx, store); err != nil {
		if errors.Is(err, domain.ErrStoreExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return store, nil
}

// UpdateStoreCommand carries a partial store update. Nil fields are kept.
type UpdateStoreCommand struct {
	StoreID string
	AdminID string
	Name    *string
	Logo    *string
	Email   *string
	Phone   *string
	Address *string
}

// UpdateStoreHandler handles store update command
type UpdateStoreHandler struct {
	repo domain.StoreRepository
	now  func() time.Time
}

// NewUpdateStoreHandler creates a new update store handler
func NewUpdateStoreHandler(repo domain.StoreRepository) *UpdateStoreHandler {
	return &UpdateStoreHandler{repo: repo, now: time.Now}
}

func (h *UpdateStoreHandler) Handle(ctx context.Context, cmd UpdateStoreCommand) (*domain.Store, error) {
	store, err := h.repo.FindByID(ctx, cmd.StoreID)
	if err != nil {
		return nil, err
	}
	if store.AdminID != cmd.AdminID {
		return nil, domain.ErrNotStoreOwner
	}

	if cmd.Name != nil {
		store.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Logo != nil {
		store.Logo = *cmd.Logo
	}
	if cmd.Email != nil {
		store.ContactInfo.Email = strings.TrimSpace(*cmd.Email)
	}
	if cmd.Phone != nil {
		store.ContactInfo.Phone = *cmd.Phone
	}
	if cmd.Address != nil {
		store.ContactInfo.Address = *cmd.Address
	}
	if err := validate(store.Name, store.ContactInfo); err != nil {
		return nil, err
	}

	store.UpdatedAt = h.now()
	if err := h.repo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}
	return store, nil
}

func validate(name string, contact domain.ContactInfo) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidStore)
	}
	if contact.Email == "" {
		return fmt.Errorf("%w: contact email is required", domain.ErrInvalidStore)
	}
	if _, err := mail.ParseAddress(contact.Email); err != nil {
		return fmt.Errorf("%w: invalid contact email", domain.ErrInvalidStore)
	}
	return nil
}
