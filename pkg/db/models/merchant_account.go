package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/pkg/enums"
)

// MerchantAccount links a restaurant to its processor account.
type MerchantAccount struct {
	ID              uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID    uuid.UUID                   `gorm:"column:restaurant_id;type:uuid;not null;uniqueIndex"`
	StripeAccountID string                      `gorm:"column:stripe_account_id;type:text;not null"`
	Status          enums.MerchantAccountStatus `gorm:"column:status;type:merchant_account_status;not null;default:'created'"`
	ChargesEnabled  bool                        `gorm:"column:charges_enabled;not null;default:false"`
	PayoutsEnabled  bool                        `gorm:"column:payouts_enabled;not null;default:false"`
	// DetailsSubmitted mirrors Stripe's details_submitted flag.
	DetailsSubmitted bool `gorm:"column:details_submitted;not null;default:false"`
	OnboardedAt     *time.Time                  `gorm:"column:onboarded_at"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
