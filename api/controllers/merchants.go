package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/api/responses"
	"github.com/mealora/mealora-backend/internal/merchants"
	"github.com/mealora/mealora-backend/pkg/db/models"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

type merchantAccountResponse struct {
	RestaurantID     uuid.UUID  `json:"restaurant_id"`
	Status           string     `json:"status"`
	ChargesEnabled   bool       `json:"charges_enabled"`
	PayoutsEnabled   bool       `json:"payouts_enabled"`
	DetailsSubmitted bool       `json:"details_submitted"`
	OnboardedAt      *time.Time `json:"onboarded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toMerchantAccountResponse(account *models.MerchantAccount) merchantAccountResponse {
	return merchantAccountResponse{
		RestaurantID:     account.RestaurantID,
		Status:           string(account.Status),
		ChargesEnabled:   account.ChargesEnabled,
		PayoutsEnabled:   account.PayoutsEnabled,
		DetailsSubmitted: account.DetailsSubmitted,
		OnboardedAt:      account.OnboardedAt,
		CreatedAt:        account.CreatedAt,
	}
}

// CreateMerchantAccount provisions the restaurant's processor account.
func CreateMerchantAccount(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "merchant service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.CreateAccount(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toMerchantAccountResponse(account))
	}
}

// StartMerchantOnboarding returns a fresh hosted onboarding link.
func StartMerchantOnboarding(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "merchant service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.StartOnboarding(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"onboarding_url": url})
	}
}

// RefreshMerchantStatus re-reads the connected account from the processor.
func RefreshMerchantStatus(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "merchant service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.RefreshStatus(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toMerchantAccountResponse(account))
	}
}

// GetMerchantAccount returns the stored merchant account state.
func GetMerchantAccount(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "merchant service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.GetAccount(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toMerchantAccountResponse(account))
	}
}
