package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
)

// Repository manages persistence for orders and their payment logs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error

	CreateLog(ctx context.Context, log *models.PaymentLog) error
	GetActiveLog(ctx context.Context, orderID uuid.UUID) (*models.PaymentLog, error)
	GetLogByIntentID(ctx context.Context, intentID string) (*models.PaymentLog, error)
	ListSettledLogsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error)

	// MarkLogReplaced stamps replaced_at on the order's active log, guarded
	// by the intent it was created with. Returns false when no row matched.
	MarkLogReplaced(ctx context.Context, orderID uuid.UUID, intentID string) (bool, error)

	// MarkLogSucceeded flips the active log created->succeeded, guarded by
	// the intent id. Returns false when no row matched.
	MarkLogSucceeded(ctx context.Context, orderID uuid.UUID, intentID string, at time.Time) (bool, error)

	MarkLogFailed(ctx context.Context, orderID uuid.UUID, intentID string, reason string) (bool, error)

	// MarkOrderPaid flips the order pending->paid and stamps
	// payment_confirmed_at. Returns false when the order was not in
	// pending payment state.
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID, at time.Time) (bool, error)

	UpdateOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, from, to enums.PaymentStatus) (bool, error)

	// UpdateOrderStatus moves the order's delivery status, guarded by the
	// status the caller read. Returns false when no row matched.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)

	// ApplyRefund advances refunded_cents on a log, guarded by the refund
	// total the caller read. Returns false when a concurrent refund won.
	ApplyRefund(ctx context.Context, logID uuid.UUID, expectedRefunded, newRefunded int64, status enums.PaymentLogStatus) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateLog(ctx context.Context, log *models.PaymentLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) GetActiveLog(ctx context.Context, orderID uuid.UUID) (*models.PaymentLog, error) {
	var log models.PaymentLog
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND replaced_at IS NULL", orderID).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *repository) GetLogByIntentID(ctx context.Context, intentID string) (*models.PaymentLog, error) {
	var log models.PaymentLog
	err := r.db.WithContext(ctx).
		Where("stripe_intent_id = ? AND replaced_at IS NULL", intentID).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *repository) ListSettledLogsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error) {
	var logs []models.PaymentLog
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND replaced_at IS NULL AND status IN ?", restaurantID, []enums.PaymentLogStatus{
			enums.PaymentLogStatusSucceeded,
			enums.PaymentLogStatusPartiallyRefunded,
		}).
		Order("created_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repository) MarkLogReplaced(ctx context.Context, orderID uuid.UUID, intentID string) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.PaymentLog{}).
		Where("order_id = ? AND stripe_intent_id = ? AND replaced_at IS NULL", orderID, intentID).
		Updates(map[string]any{
			"replaced_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkLogSucceeded(ctx context.Context, orderID uuid.UUID, intentID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentLog{}).
		Where(
			"order_id = ? AND stripe_intent_id = ? AND replaced_at IS NULL AND status = ?",
			orderID, intentID, enums.PaymentLogStatusCreated,
		).
		Updates(map[string]any{
			"status":       enums.PaymentLogStatusSucceeded,
			"succeeded_at": at,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkLogFailed(ctx context.Context, orderID uuid.UUID, intentID string, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentLog{}).
		Where(
			"order_id = ? AND stripe_intent_id = ? AND replaced_at IS NULL AND status = ?",
			orderID, intentID, enums.PaymentLogStatusCreated,
		).
		Updates(map[string]any{
			"status":         enums.PaymentLogStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status":       enums.PaymentStatusPaid,
			"payment_confirmed_at": at,
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, from, to enums.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, from).
		Updates(map[string]any{
			"payment_status": to,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ApplyRefund(ctx context.Context, logID uuid.UUID, expectedRefunded, newRefunded int64, status enums.PaymentLogStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentLog{}).
		Where("id = ? AND refunded_cents = ? AND replaced_at IS NULL", logID, expectedRefunded).
		Updates(map[string]any{
			"refunded_cents": newRefunded,
			"status":         status,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
