package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mealora/mealora-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID       uuid.UUID
	Actor        enums.ActorType
	RestaurantID *uuid.UUID
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID       uuid.UUID       `json:"user_id"`
	Actor        enums.ActorType `json:"actor"`
	RestaurantID *uuid.UUID      `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

// Caller is the resolved identity attached to a request after auth.
type Caller struct {
	UserID       uuid.UUID
	Actor        enums.ActorType
	RestaurantID *uuid.UUID
}

// CallerFromClaims converts validated claims into the request-scoped identity.
func CallerFromClaims(claims *AccessTokenClaims) Caller {
	return Caller{
		UserID:       claims.UserID,
		Actor:        claims.Actor,
		RestaurantID: claims.RestaurantID,
	}
}
