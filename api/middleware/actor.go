package middleware

import (
	"net/http"

	"github.com/mealora/mealora-backend/api/responses"
	"github.com/mealora/mealora-backend/pkg/enums"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

// RequireActor rejects callers whose token was minted for a different actor type.
func RequireActor(actor enums.ActorType, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok || caller.Actor != actor {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "actor not permitted"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRestaurant additionally demands a restaurant binding on the token.
// Restaurant-scoped routes read the id from the caller, never from the URL.
func RequireRestaurant(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok || caller.Actor != enums.ActorTypeRestaurant {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "actor not permitted"))
				return
			}
			if caller.RestaurantID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "restaurant context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
