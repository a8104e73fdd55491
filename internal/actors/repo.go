package actors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
)

// Repository manages actors and their inventories.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Get(ctx context.Context, id uuid.UUID) (*models.Actor, error)
	List(ctx context.Context) ([]models.Actor, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Actor, error)
	Create(ctx context.Context, actor *models.Actor) error
	Update(ctx context.Context, actor *models.Actor) error
	Delete(ctx context.Context, id uuid.UUID) error

	UpdateBalance(ctx context.Context, id uuid.UUID, balance int) error
	AddItem(ctx context.Context, item *models.ActorItem) error
	RemoveItem(ctx context.Context, actorID, itemID uuid.UUID) error
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

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	var actor models.Actor
	err := r.db.WithContext(ctx).Preload("Items").First(&actor, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

func (r *repository) List(ctx context.Context) ([]models.Actor, error) {
	var actors []models.Actor
	err := r.db.WithContext(ctx).Preload("Items").Order("name ASC").Find(&actors).Error
	return actors, err
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Actor, error) {
	var actors []models.Actor
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&actors).Error
	return actors, err
}

func (r *repository) Create(ctx context.Context, actor *models.Actor) error {
	return r.db.WithContext(ctx).Create(actor).Error
}

func (r *repository) Update(ctx context.Context, actor *models.Actor) error {
	return r.db.WithContext(ctx).Omit("Items").Save(actor).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&models.Actor{ID: id}).Error
}

func (r *repository) UpdateBalance(ctx context.Context, id uuid.UUID, balance int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Actor{}).
		Where("id = ?", id).
		Update("balance", balance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) AddItem(ctx context.Context, item *models.ActorItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) RemoveItem(ctx context.Context, actorID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("actor_id = ? AND id = ?", actorID, itemID).
		Delete(&models.ActorItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
