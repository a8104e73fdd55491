package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
)

// Repository persists settings records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var record models.Setting
	if err := r.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Upsert(ctx context.Context, key string, value []byte) error {
	record := models.Setting{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}

func (r *repository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.Setting{}, "key = ?", key).Error
}
