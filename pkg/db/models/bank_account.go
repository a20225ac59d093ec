package models

import (
	"time"

	"github.com/google/uuid"
)

// BankAccount stores where a restaurant receives payouts. The full
// account number never leaves this table unmasked.
type BankAccount struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID  uuid.UUID  `gorm:"column:restaurant_id;type:uuid;not null;uniqueIndex"`
	AccountHolder string     `gorm:"column:account_holder;type:text;not null"`
	BankName      string     `gorm:"column:bank_name;type:text;not null"`
	RoutingNumber string     `gorm:"column:routing_number;type:text;not null"`
	AccountNumber string     `gorm:"column:account_number;type:text;not null"`
	Active        bool       `gorm:"column:active;not null;default:true"`
	DeactivatedAt *time.Time `gorm:"column:deactivated_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
