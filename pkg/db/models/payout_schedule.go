package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/pkg/enums"
)

// PayoutSchedule holds a restaurant's disbursement cadence.
type PayoutSchedule struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID uuid.UUID            `gorm:"column:restaurant_id;type:uuid;not null;uniqueIndex"`
	Interval     enums.PayoutInterval `gorm:"column:interval;type:payout_interval;not null;default:'weekly'"`
	// AnchorDay is the weekday (0=Sunday) for weekly schedules and the
	// day of month (1-31, clamped) for monthly ones.
	AnchorDay    int   `gorm:"column:anchor_day;not null;default:1"`
	MinimumCents int64 `gorm:"column:minimum_cents;not null;default:0"`
	// Enabled gates the automatic sweep only; manual triggers ignore it.
	Enabled   bool      `gorm:"column:enabled;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
