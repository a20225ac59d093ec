package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/pkg/enums"
)

// PayoutRecord tracks one disbursement to a restaurant.
type PayoutRecord struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID   uuid.UUID          `gorm:"column:restaurant_id;type:uuid;not null;index"`
	AmountCents    int64              `gorm:"column:amount_cents;not null"`
	Currency       string             `gorm:"column:currency;type:text;not null;default:'usd'"`
	Status         enums.PayoutStatus `gorm:"column:status;type:payout_status;not null;default:'scheduled'"`
	StripePayoutID *string            `gorm:"column:stripe_payout_id;type:text"`
	FailureReason  *string            `gorm:"column:failure_reason"`
	Manual         bool               `gorm:"column:manual;not null;default:false"`
	CompletedAt    *time.Time         `gorm:"column:completed_at"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
