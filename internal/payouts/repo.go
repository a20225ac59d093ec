package payouts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
)

// Repository manages persistence for payout schedules and records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetSchedule(ctx context.Context, restaurantID uuid.UUID) (*models.PayoutSchedule, error)
	UpsertSchedule(ctx context.Context, schedule *models.PayoutSchedule) error
	ListSchedules(ctx context.Context) ([]models.PayoutSchedule, error)

	CreateRecord(ctx context.Context, record *models.PayoutRecord) error
	// MarkRecordCompleted flips a scheduled record to completed. Returns
	// false when the record already left the scheduled state.
	MarkRecordCompleted(ctx context.Context, recordID uuid.UUID, stripePayoutID string, at time.Time) (bool, error)
	MarkRecordFailed(ctx context.Context, recordID uuid.UUID, reason string) (bool, error)
	ListRecordsByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.PayoutRecord, error)

	// SumDisbursed totals scheduled and completed payouts for the restaurant.
	SumDisbursed(ctx context.Context, restaurantID uuid.UUID) (int64, error)
	LastCompletedAt(ctx context.Context, restaurantID uuid.UUID) (*time.Time, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payout repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetSchedule(ctx context.Context, restaurantID uuid.UUID) (*models.PayoutSchedule, error) {
	var schedule models.PayoutSchedule
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) UpsertSchedule(ctx context.Context, schedule *models.PayoutSchedule) error {
	existing, err := r.GetSchedule(ctx, schedule.RestaurantID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(schedule).Error
	}
	schedule.ID = existing.ID
	schedule.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(schedule).Error
}

func (r *repository) ListSchedules(ctx context.Context) ([]models.PayoutSchedule, error) {
	var schedules []models.PayoutSchedule
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *repository) CreateRecord(ctx context.Context, record *models.PayoutRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) MarkRecordCompleted(ctx context.Context, recordID uuid.UUID, stripePayoutID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PayoutRecord{}).
		Where("id = ? AND status = ?", recordID, enums.PayoutStatusScheduled).
		Updates(map[string]any{
			"status":           enums.PayoutStatusCompleted,
			"stripe_payout_id": stripePayoutID,
			"completed_at":     at,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkRecordFailed(ctx context.Context, recordID uuid.UUID, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PayoutRecord{}).
		Where("id = ? AND status = ?", recordID, enums.PayoutStatusScheduled).
		Updates(map[string]any{
			"status":         enums.PayoutStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListRecordsByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.PayoutRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var records []models.PayoutRecord
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) SumDisbursed(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.PayoutRecord{}).
		Select("SUM(amount_cents)").
		Where("restaurant_id = ? AND status IN ?", restaurantID, []enums.PayoutStatus{
			enums.PayoutStatusScheduled,
			enums.PayoutStatusCompleted,
		}).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) LastCompletedAt(ctx context.Context, restaurantID uuid.UUID) (*time.Time, error) {
	var record models.PayoutRecord
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND status = ?", restaurantID, enums.PayoutStatusCompleted).
		Order("completed_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.CompletedAt, nil
}
