package shop

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
)

// ReservationRepository persists reservation rows.
type ReservationRepository interface {
	WithTx(tx *gorm.DB) ReservationRepository
	Create(ctx context.Context, reservation *models.Reservation) error
	List(ctx context.Context) ([]models.Reservation, error)
	ListForItem(ctx context.Context, itemRef uuid.UUID) ([]models.Reservation, error)
	Exists(ctx context.Context, itemRef, actorID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository binds the repository to the provided DB handle.
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) WithTx(tx *gorm.DB) ReservationRepository {
	if tx == nil {
		return r
	}
	return &reservationRepository{db: tx}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) List(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) ListForItem(ctx context.Context, itemRef uuid.UUID) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("item_ref = ?", itemRef).
		Order("created_at ASC").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) Exists(ctx context.Context, itemRef, actorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("item_ref = ? AND actor_id = ?", itemRef, actorID).
		Count(&count).Error
	return count > 0, err
}

func (r *reservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Reservation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
