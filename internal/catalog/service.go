package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db"
	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
)

// Service exposes the GM-facing catalog operations. Catalog rows are the
// canonical item definitions; the shop only ever references them by id.
type Service interface {
	WithTx(tx *gorm.DB) Service

	ListSources(ctx context.Context) ([]models.CatalogSource, error)
	CreateSource(ctx context.Context, name string) (*models.CatalogSource, error)
	DeleteSource(ctx context.Context, id uuid.UUID) error

	ListItems(ctx context.Context, sourceID uuid.UUID) ([]models.CatalogItem, error)
	CreateItem(ctx context.Context, input ItemInput) (*models.CatalogItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*models.CatalogItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// ResolveItem loads an item by reference. A nil item with a nil error
	// means the reference points at nothing.
	ResolveItem(ctx context.Context, itemRef uuid.UUID) (*models.CatalogItem, error)
}

// ItemInput carries the writable fields of a catalog item.
type ItemInput struct {
	SourceID    uuid.UUID
	Name        string
	Image       *string
	Description *string
	BasePrice   int
}

type service struct {
	repo Repository
}

// NewService builds a catalog service on the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) ListSources(ctx context.Context) ([]models.CatalogSource, error) {
	sources, err := s.repo.ListSources(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog sources")
	}
	return sources, nil
}

func (s *service) CreateSource(ctx context.Context, name string) (*models.CatalogSource, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source name is required")
	}
	source := &models.CatalogSource{ID: uuid.New(), Name: name}
	if err := s.repo.CreateSource(ctx, source); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("source %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create catalog source")
	}
	return source, nil
}

func (s *service) DeleteSource(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "source id is required")
	}
	if _, err := s.repo.GetSource(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "catalog source not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog source")
	}
	if err := s.repo.DeleteSource(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete catalog source")
	}
	return nil
}

func (s *service) ListItems(ctx context.Context, sourceID uuid.UUID) ([]models.CatalogItem, error) {
	if sourceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source id is required")
	}
	items, err := s.repo.ListItems(ctx, sourceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog items")
	}
	return items, nil
}

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*models.CatalogItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetSource(ctx, input.SourceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog source not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog source")
	}
	item := &models.CatalogItem{
		ID:          uuid.New(),
		SourceID:    input.SourceID,
		Name:        input.Name,
		Image:       input.Image,
		Description: input.Description,
		BasePrice:   input.BasePrice,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create catalog item")
	}
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*models.CatalogItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.BasePrice < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must be non-negative")
	}
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog item")
	}
	item.Name = input.Name
	item.Image = input.Image
	item.Description = input.Description
	item.BasePrice = input.BasePrice
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update catalog item")
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if _, err := s.repo.GetItem(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog item")
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete catalog item")
	}
	return nil
}

func (s *service) ResolveItem(ctx context.Context, itemRef uuid.UUID) (*models.CatalogItem, error) {
	if itemRef == uuid.Nil {
		return nil, nil
	}
	item, err := s.repo.GetItem(ctx, itemRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve catalog item")
	}
	return item, nil
}

// CopyForGrant builds an inventory row from a catalog item. The copy gets a
// fresh identity; only SourceItemID records where it came from.
func CopyForGrant(item models.CatalogItem, actorID uuid.UUID, paidPrice int) models.ActorItem {
	sourceID := item.ID
	return models.ActorItem{
		ID:           uuid.New(),
		ActorID:      actorID,
		SourceItemID: &sourceID,
		Name:         item.Name,
		Image:        item.Image,
		Description:  item.Description,
		Price:        paidPrice,
	}
}

func validateItemInput(input ItemInput) error {
	if input.SourceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "source id is required")
	}
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.BasePrice < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price must be non-negative")
	}
	return nil
}
