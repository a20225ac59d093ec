package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/pkg/enums"
)

// PaymentLog records one payment attempt against an order. An order keeps
// at most one non-replaced log; retries mark the previous row replaced.
type PaymentLog struct {
	ID                  uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	RestaurantID        uuid.UUID              `gorm:"column:restaurant_id;type:uuid;not null;index"`
	StripeIntentID      string                 `gorm:"column:stripe_intent_id;type:text;not null;index"`
	AmountCents         int64                  `gorm:"column:amount_cents;not null"`
	ApplicationFeeCents int64                  `gorm:"column:application_fee_cents;not null"`
	RefundedCents       int64                  `gorm:"column:refunded_cents;not null;default:0"`
	Currency            string                 `gorm:"column:currency;type:text;not null;default:'usd'"`
	Status              enums.PaymentLogStatus `gorm:"column:status;type:payment_log_status;not null;default:'created'"`
	FailureReason       *string                `gorm:"column:failure_reason"`
	ReplacedAt          *time.Time             `gorm:"column:replaced_at"`
	SucceededAt         *time.Time             `gorm:"column:succeeded_at"`
	CreatedAt           time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// NetCents is the merchant-credited remainder after fee and refunds.
func (p PaymentLog) NetCents() int64 {
	return p.AmountCents - p.ApplicationFeeCents - p.RefundedCents
}
