package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/api/responses"
	"github.com/mealora/mealora-backend/api/validators"
	"github.com/mealora/mealora-backend/internal/payouts"
	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

type payoutScheduleResponse struct {
	Interval     string     `json:"interval"`
	AnchorDay    int        `json:"anchor_day"`
	MinimumCents int64      `json:"minimum_cents"`
	Enabled      bool       `json:"enabled"`
	NextPayoutAt *time.Time `json:"next_payout_at,omitempty"`
}

func toPayoutScheduleResponse(view *payouts.ScheduleView) payoutScheduleResponse {
	return payoutScheduleResponse{
		Interval:     string(view.Schedule.Interval),
		AnchorDay:    view.Schedule.AnchorDay,
		MinimumCents: view.Schedule.MinimumCents,
		Enabled:      view.Schedule.Enabled,
		NextPayoutAt: view.NextPayoutAt,
	}
}

type payoutRecordResponse struct {
	ID             uuid.UUID  `json:"id"`
	AmountCents    int64      `json:"amount_cents"`
	Currency       string     `json:"currency"`
	Status         string     `json:"status"`
	StripePayoutID *string    `json:"stripe_payout_id,omitempty"`
	FailureReason  *string    `json:"failure_reason,omitempty"`
	Manual         bool       `json:"manual"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toPayoutRecordResponse(record *models.PayoutRecord) payoutRecordResponse {
	return payoutRecordResponse{
		ID:             record.ID,
		AmountCents:    record.AmountCents,
		Currency:       record.Currency,
		Status:         string(record.Status),
		StripePayoutID: record.StripePayoutID,
		FailureReason:  record.FailureReason,
		Manual:         record.Manual,
		CompletedAt:    record.CompletedAt,
		CreatedAt:      record.CreatedAt,
	}
}

// GetPendingEarnings reports the restaurant's undisbursed balance.
func GetPendingEarnings(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pending, err := svc.PendingEarnings(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"pending_cents": pending})
	}
}

type configureScheduleRequest struct {
	Interval     string `json:"interval" validate:"required,oneof=daily weekly monthly manual"`
	AnchorDay    int    `json:"anchor_day" validate:"min=0,max=31"`
	MinimumCents int64  `json:"minimum_cents" validate:"min=0"`
	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled"`
}

// ConfigurePayoutSchedule sets the restaurant's disbursement cadence.
func ConfigurePayoutSchedule(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req configureScheduleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}

		view, err := svc.ConfigureSchedule(r.Context(), payouts.ConfigureScheduleInput{
			RestaurantID: restaurantID,
			Interval:     enums.PayoutInterval(req.Interval),
			AnchorDay:    req.AnchorDay,
			MinimumCents: req.MinimumCents,
			Enabled:      enabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPayoutScheduleResponse(view))
	}
}

// GetPayoutSchedule returns the configured cadence and next run date.
func GetPayoutSchedule(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetSchedule(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPayoutScheduleResponse(view))
	}
}

// TriggerPayout disburses the full pending balance on demand.
func TriggerPayout(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.TriggerManual(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toPayoutRecordResponse(record))
	}
}

// PayoutHistory lists past disbursements, newest first.
func PayoutHistory(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		restaurantID, err := restaurantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.History(r.Context(), restaurantID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]payoutRecordResponse, 0, len(records))
		for i := range records {
			views = append(views, toPayoutRecordResponse(&records[i]))
		}
		responses.WriteSuccess(w, views)
	}
}
