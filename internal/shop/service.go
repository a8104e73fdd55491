package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/internal/settings"
	"github.com/PSM90/fuorid20-arena-market/pkg/db"
	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
)

type itemResolver interface {
	ResolveItem(ctx context.Context, itemRef uuid.UUID) (*models.CatalogItem, error)
}

// Service is the shop ledger: the configuration record, per-item stock, and
// reservation rows. Stock mutations are meant to run inside the transaction
// engine's write lock.
type Service interface {
	WithTx(tx *gorm.DB) Service

	Config(ctx context.Context) (Config, error)
	ReplaceConfig(ctx context.Context, cfg Config) error
	Entry(ctx context.Context, itemRef uuid.UUID) (*Entry, error)
	SetStock(ctx context.Context, itemRef uuid.UUID, stock int) error
	DecrementStock(ctx context.Context, itemRef uuid.UUID) error

	AddReservation(ctx context.Context, input ReservationInput) (*models.Reservation, error)
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	ListReservationsForItem(ctx context.Context, itemRef uuid.UUID) ([]models.Reservation, error)
	HasReservation(ctx context.Context, itemRef, actorID uuid.UUID) (bool, error)
	DeleteReservation(ctx context.Context, id uuid.UUID) error

	Storefront(ctx context.Context) (*StorefrontView, error)
}

// ReservationInput carries the fields for a new reservation row.
type ReservationInput struct {
	ItemRef    uuid.UUID
	ActorID    uuid.UUID
	ActorName  string
	PlayerName string
}

// StorefrontItem is one sellable line in the player-facing shop view.
type StorefrontItem struct {
	ItemRef     uuid.UUID              `json:"item_ref"`
	Name        string                 `json:"name"`
	Image       *string                `json:"image,omitempty"`
	Description *string                `json:"description,omitempty"`
	Mode        enums.AvailabilityMode `json:"mode"`
	Price       int                    `json:"price"`
	Stock       *int                   `json:"stock,omitempty"`
}

// StorefrontView is the complete player-facing shop state.
type StorefrontView struct {
	Open     bool             `json:"open"`
	Currency string           `json:"currency"`
	Items    []StorefrontItem `json:"items"`
}

type service struct {
	settings     settings.Service
	reservations ReservationRepository
	catalog      itemResolver
}

// NewService builds the shop ledger on the provided stack.
func NewService(settingsSvc settings.Service, reservations ReservationRepository, catalog itemResolver) (Service, error) {
	if settingsSvc == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if reservations == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("item resolver required")
	}
	return &service{
		settings:     settingsSvc,
		reservations: reservations,
		catalog:      catalog,
	}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{
		settings:     s.settings.WithTx(tx),
		reservations: s.reservations.WithTx(tx),
		catalog:      s.catalog,
	}
}

func (s *service) Config(ctx context.Context) (Config, error) {
	var cfg Config
	if _, err := s.settings.GetJSON(ctx, settings.KeyShopConfig, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (s *service) ReplaceConfig(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.settings.PutJSON(ctx, settings.KeyShopConfig, cfg)
}

func (s *service) Entry(ctx context.Context, itemRef uuid.UUID) (*Entry, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.Find(itemRef), nil
}

func (s *service) SetStock(ctx context.Context, itemRef uuid.UUID, stock int) error {
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}
	cfg, err := s.Config(ctx)
	if err != nil {
		return err
	}
	entry := cfg.Find(itemRef)
	if entry == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item is not on sale")
	}
	if entry.Mode != enums.AvailabilityLimited {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "item does not track stock")
	}
	entry.Stock = &stock
	return s.settings.PutJSON(ctx, settings.KeyShopConfig, cfg)
}

func (s *service) DecrementStock(ctx context.Context, itemRef uuid.UUID) error {
	cfg, err := s.Config(ctx)
	if err != nil {
		return err
	}
	entry := cfg.Find(itemRef)
	if entry == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item is not on sale")
	}
	if entry.Mode != enums.AvailabilityLimited {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "item does not track stock")
	}
	available := entry.Available()
	if available == nil || *available <= 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "item is sold out")
	}
	next := *available - 1
	entry.Stock = &next
	return s.settings.PutJSON(ctx, settings.KeyShopConfig, cfg)
}

func (s *service) AddReservation(ctx context.Context, input ReservationInput) (*models.Reservation, error) {
	if input.ItemRef == uuid.Nil || input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item and actor references are required")
	}
	reservation := &models.Reservation{
		ID:         uuid.New(),
		ItemRef:    input.ItemRef,
		ActorID:    input.ActorID,
		ActorName:  input.ActorName,
		PlayerName: input.PlayerName,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "actor already holds a reservation for this item")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}
	return reservation, nil
}

func (s *service) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	reservations, err := s.reservations.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return reservations, nil
}

func (s *service) ListReservationsForItem(ctx context.Context, itemRef uuid.UUID) ([]models.Reservation, error) {
	reservations, err := s.reservations.ListForItem(ctx, itemRef)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations for item")
	}
	return reservations, nil
}

func (s *service) HasReservation(ctx context.Context, itemRef, actorID uuid.UUID) (bool, error) {
	exists, err := s.reservations.Exists(ctx, itemRef, actorID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check reservation")
	}
	return exists, nil
}

func (s *service) DeleteReservation(ctx context.Context, id uuid.UUID) error {
	if err := s.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reservation")
	}
	return nil
}

// Storefront assembles the player-facing view. Entries whose item reference
// no longer resolves are skipped rather than failing the whole view.
func (s *service) Storefront(ctx context.Context) (*StorefrontView, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.settings.ShopOpen(ctx)
	if err != nil {
		return nil, err
	}
	currency, err := s.settings.CurrencyName(ctx)
	if err != nil {
		return nil, err
	}

	view := &StorefrontView{Open: open, Currency: currency, Items: []StorefrontItem{}}
	for _, entry := range cfg.Entries {
		item, err := s.catalog.ResolveItem(ctx, entry.ItemRef)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		if !cfg.HasSource(item.SourceID) {
			continue
		}
		view.Items = append(view.Items, StorefrontItem{
			ItemRef:     item.ID,
			Name:        item.Name,
			Image:       item.Image,
			Description: item.Description,
			Mode:        entry.Mode,
			Price:       entry.EffectivePrice(item.BasePrice),
			Stock:       entry.Available(),
		})
	}
	return view, nil
}
