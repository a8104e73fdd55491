package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
)

// Repository manages catalog sources and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListSources(ctx context.Context) ([]models.CatalogSource, error)
	GetSource(ctx context.Context, id uuid.UUID) (*models.CatalogSource, error)
	CreateSource(ctx context.Context, source *models.CatalogSource) error
	DeleteSource(ctx context.Context, id uuid.UUID) error

	ListItems(ctx context.Context, sourceID uuid.UUID) ([]models.CatalogItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	CreateItem(ctx context.Context, item *models.CatalogItem) error
	UpdateItem(ctx context.Context, item *models.CatalogItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListSources(ctx context.Context) ([]models.CatalogSource, error) {
	var sources []models.CatalogSource
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&sources).Error
	return sources, err
}

func (r *repository) GetSource(ctx context.Context, id uuid.UUID) (*models.CatalogSource, error) {
	var source models.CatalogSource
	if err := r.db.WithContext(ctx).First(&source, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &source, nil
}

func (r *repository) CreateSource(ctx context.Context, source *models.CatalogSource) error {
	return r.db.WithContext(ctx).Create(source).Error
}

func (r *repository) DeleteSource(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&models.CatalogSource{ID: id}).Error
}

func (r *repository) ListItems(ctx context.Context, sourceID uuid.UUID) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := r.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) GetItem(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateItem(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CatalogItem{}, "id = ?", id).Error
}
