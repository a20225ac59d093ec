package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/pkg/enums"
)

// Order is the unit of purchase a customer pays for.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	RestaurantID  uuid.UUID           `gorm:"column:restaurant_id;type:uuid;not null;index"`
	TotalCents    int64               `gorm:"column:total_cents;not null"`
	Currency      string              `gorm:"column:currency;type:text;not null;default:'usd'"`
	Status        enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	// PaymentConfirmedAt is stamped once, when the payment settles.
	PaymentConfirmedAt *time.Time `gorm:"column:payment_confirmed_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
