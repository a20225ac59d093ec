package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/api/responses"
	"github.com/mealora/mealora-backend/api/validators"
	"github.com/mealora/mealora-backend/internal/payments"
	"github.com/mealora/mealora-backend/pkg/db/models"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

type paymentLogResponse struct {
	OrderID             uuid.UUID  `json:"order_id"`
	IntentID            string     `json:"intent_id"`
	AmountCents         int64      `json:"amount_cents"`
	ApplicationFeeCents int64      `json:"application_fee_cents"`
	RefundedCents       int64      `json:"refunded_cents"`
	Currency            string     `json:"currency"`
	Status              string     `json:"status"`
	FailureReason       *string    `json:"failure_reason,omitempty"`
	SucceededAt         *time.Time `json:"succeeded_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func toPaymentLogResponse(log *models.PaymentLog) paymentLogResponse {
	return paymentLogResponse{
		OrderID:             log.OrderID,
		IntentID:            log.StripeIntentID,
		AmountCents:         log.AmountCents,
		ApplicationFeeCents: log.ApplicationFeeCents,
		RefundedCents:       log.RefundedCents,
		Currency:            log.Currency,
		Status:              string(log.Status),
		FailureReason:       log.FailureReason,
		SucceededAt:         log.SucceededAt,
		CreatedAt:           log.CreatedAt,
	}
}

type createIntentRequest struct {
	FeeOverrideCents *int64 `json:"fee_override_cents" validate:"omitempty,min=0"`
}

type createIntentResponse struct {
	paymentLogResponse
	ClientSecret string `json:"client_secret"`
}

// CreatePaymentIntent opens (or replaces) the payment attempt for an order.
func CreatePaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		orderID, err := parseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller, err := callerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createIntentRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := svc.CreateIntent(r.Context(), payments.CreateIntentInput{
			OrderID:          orderID,
			Caller:           caller,
			FeeOverrideCents: req.FeeOverrideCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createIntentResponse{
			paymentLogResponse: toPaymentLogResponse(result.Log),
			ClientSecret:       result.ClientSecret,
		})
	}
}

type intentStatusResponse struct {
	paymentLogResponse
	ProviderStatus string `json:"provider_status,omitempty"`
}

// GetPaymentIntentStatus reports where the active payment attempt stands.
func GetPaymentIntentStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		orderID, err := parseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller, err := callerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.GetIntentStatus(r.Context(), orderID, caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, intentStatusResponse{
			paymentLogResponse: toPaymentLogResponse(status.Log),
			ProviderStatus:     string(status.ProviderStatus),
		})
	}
}

type confirmIntentRequest struct {
	IntentID string `json:"intent_id" validate:"required"`
}

type confirmIntentResponse struct {
	paymentLogResponse
	Outcome string `json:"outcome"`
}

// ConfirmPaymentIntent settles the attempt the client believes succeeded.
func ConfirmPaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		orderID, err := parseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller, err := callerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req confirmIntentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Confirm(r.Context(), payments.ConfirmInput{
			OrderID:  orderID,
			IntentID: req.IntentID,
			Caller:   caller,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, confirmIntentResponse{
			paymentLogResponse: toPaymentLogResponse(result.Log),
			Outcome:            string(result.Outcome),
		})
	}
}

type refundRequest struct {
	AmountCents *int64 `json:"amount_cents" validate:"omitempty,min=1"`
}

// RefundPayment refunds part or all of the order's settled payment.
func RefundPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		orderID, err := parseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller, err := callerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req refundRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		log, err := svc.Refund(r.Context(), payments.RefundInput{
			OrderID:     orderID,
			Caller:      caller,
			AmountCents: req.AmountCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPaymentLogResponse(log))
	}
}
