package players

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
)

// Repository manages player accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetByName(ctx context.Context, name string) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Create(ctx context.Context, player *models.Player) error
	Update(ctx context.Context, player *models.Player) error
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

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var player models.Player
	if err := r.db.WithContext(ctx).First(&player, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	var player models.Player
	if err := r.db.WithContext(ctx).First(&player, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *repository) List(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	err := r.db.WithContext(ctx).Order("name ASC").Find(&players).Error
	return players, err
}

func (r *repository) Create(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *repository) Update(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Save(player).Error
}
