package controllers

import (
	"net/http"

	"github.com/mealora/mealora-backend/api/responses"
	"github.com/mealora/mealora-backend/api/validators"
	"github.com/mealora/mealora-backend/internal/bankaccounts"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

type upsertBankAccountRequest struct {
	AccountHolder string `json:"account_holder" validate:"required,max=120"`
	BankName      string `json:"bank_name" validate:"required,max=120"`
	RoutingNumber string `json:"routing_number" validate:"required,len=9,numeric"`
	AccountNumber string `json:"account_number" validate:"required,min=4,max=17,numeric"`
}

// UpsertBankAccount stores the restaurant's payout destination. The raw
// account number is write-only; responses carry the masked form.
func UpsertBankAccount(svc bankaccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bank account service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req upsertBankAccountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Upsert(r.Context(), bankaccounts.UpsertInput{
			RestaurantID:  restaurantID,
			AccountHolder: validators.SanitizeString(req.AccountHolder, 120),
			BankName:      validators.SanitizeString(req.BankName, 120),
			RoutingNumber: req.RoutingNumber,
			AccountNumber: req.AccountNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// GetBankAccount returns the masked bank details.
func GetBankAccount(svc bankaccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bank account service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// DeactivateBankAccount removes the restaurant from payout eligibility.
func DeactivateBankAccount(svc bankaccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bank account service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), restaurantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
