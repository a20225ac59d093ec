package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/pkg/enums"
)

// Notification stores an in-app notification addressed to one marketplace
// participant: a restaurant (keyed by restaurant id) or a customer (keyed by
// user id).
type Notification struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID   uuid.UUID              `gorm:"type:uuid;not null"`
	RecipientType enums.ActorType        `gorm:"type:actor_type;not null"`
	Type          enums.NotificationType `gorm:"type:notification_type;not null"`
	Title        string                 `gorm:"type:text;not null"`
	Message      string                 `gorm:"type:text;not null"`
	Link         *string                `gorm:"type:text"`
	ReadAt       *time.Time             `gorm:"type:timestamptz"`
	CreatedAt    time.Time              `gorm:"type:timestamptz;default:now()"`
}
