package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	"github.com/PSM90/fuorid20-arena-market/pkg/pagination"
)

// Repository persists activity log entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.ActivityEntry) error
	// TrimToCap deletes the oldest rows until at most cap remain.
	TrimToCap(ctx context.Context, cap int) error
	Count(ctx context.Context) (int64, error)
	// ListPage returns entries newest-first, one past the limit so callers
	// can detect the next page.
	ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.ActivityEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context) error
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

func (r *repository) Append(ctx context.Context, entry *models.ActivityEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) TrimToCap(ctx context.Context, cap int) error {
	if cap <= 0 {
		return r.Clear(ctx)
	}
	keep := r.db.WithContext(ctx).
		Model(&models.ActivityEntry{}).
		Select("id").
		Order("created_at DESC, id DESC").
		Limit(cap)
	return r.db.WithContext(ctx).
		Where("id NOT IN (?)", keep).
		Delete(&models.ActivityEntry{}).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActivityEntry{}).Count(&count).Error
	return count, err
}

func (r *repository) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.ActivityEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ActivityEntry{}).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var entries []models.ActivityEntry
	err := query.Find(&entries).Error
	return entries, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ActivityEntry{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.ActivityEntry{}).Error
}
