package middleware

import (
	"net/http"
	"strings"

	"github.com/mealora/mealora-backend/api/responses"
	pkgauth "github.com/mealora/mealora-backend/pkg/auth"
	"github.com/mealora/mealora-backend/pkg/config"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// resolved caller identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			caller := pkgauth.CallerFromClaims(claims)
			ctx := WithCaller(r.Context(), caller)

			if logg != nil {
				fields := map[string]any{
					"user_id": caller.UserID.String(),
					"actor":   string(caller.Actor),
				}
				if caller.RestaurantID != nil {
					fields["restaurant_id"] = caller.RestaurantID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
