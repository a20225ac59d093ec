package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/api/middleware"
	pkgauth "github.com/mealora/mealora-backend/pkg/auth"
	"github.com/mealora/mealora-backend/pkg/enums"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
)

// callerFromRequest resolves the authenticated caller from the request context.
func callerFromRequest(r *http.Request) (pkgauth.Caller, error) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		return pkgauth.Caller{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing")
	}
	return caller, nil
}

// restaurantFromRequest resolves the restaurant binding from the caller.
// Routes never accept a restaurant id from the URL or body.
func restaurantFromRequest(r *http.Request) (uuid.UUID, error) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok || caller.RestaurantID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "restaurant context missing")
	}
	return *caller.RestaurantID, nil
}

// recipientFromRequest maps the caller to the notification recipient it owns.
// Restaurant staff read their restaurant's feed, everyone else their own.
func recipientFromRequest(r *http.Request) (uuid.UUID, enums.ActorType, error) {
	caller, err := callerFromRequest(r)
	if err != nil {
		return uuid.Nil, "", err
	}
	if caller.Actor == enums.ActorTypeRestaurant {
		if caller.RestaurantID == nil {
			return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "restaurant context missing")
		}
		return *caller.RestaurantID, enums.ActorTypeRestaurant, nil
	}
	return caller.UserID, caller.Actor, nil
}

func parseURLUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
