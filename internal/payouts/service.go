package payouts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"

	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
	"github.com/mealora/mealora-backend/pkg/metrics"
)

const defaultStripeCallTimeout = 10 * time.Second

// Service computes earnings and disburses payouts to restaurants.
type Service interface {
	PendingEarnings(ctx context.Context, restaurantID uuid.UUID) (int64, error)
	ConfigureSchedule(ctx context.Context, input ConfigureScheduleInput) (*ScheduleView, error)
	GetSchedule(ctx context.Context, restaurantID uuid.UUID) (*ScheduleView, error)
	TriggerManual(ctx context.Context, restaurantID uuid.UUID) (*models.PayoutRecord, error)
	RunSweep(ctx context.Context, now time.Time) (*SweepResult, error)
	History(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.PayoutRecord, error)
}

// ConfigureScheduleInput sets a restaurant's disbursement cadence.
type ConfigureScheduleInput struct {
	RestaurantID uuid.UUID
	Interval     enums.PayoutInterval
	AnchorDay    int
	MinimumCents int64
	// Enabled pauses the automatic sweep when false. Manual triggers still work.
	Enabled bool
}

// ScheduleView pairs the stored schedule with its next disbursement date.
type ScheduleView struct {
	Schedule     *models.PayoutSchedule
	NextPayoutAt *time.Time
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Examined  int
	Disbursed int
	Skipped   int
	Failed    int
}

type earningsSource interface {
	ListSettledLogsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error)
}

type bankGate interface {
	HasActive(ctx context.Context, restaurantID uuid.UUID) (bool, error)
}

type merchantGate interface {
	GetAccount(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error)
}

// Notifier fans out payout events to the restaurant.
type Notifier interface {
	PayoutCompleted(ctx context.Context, restaurantID uuid.UUID, amountCents int64) error
	PayoutFailed(ctx context.Context, restaurantID uuid.UUID, amountCents int64, reason string) error
	PayoutBlocked(ctx context.Context, restaurantID uuid.UUID, reason string) error
}

// ServiceParams wires the payout service dependencies.
type ServiceParams struct {
	Repo        Repository
	Earnings    earningsSource
	Banks       bankGate
	Merchants   merchantGate
	Stripe      StripePayoutClient
	Notifier    Notifier
	Metrics     *metrics.PayoutMetrics
	Logger      *logger.Logger
	Currency    string
	CallTimeout time.Duration
}

type service struct {
	repo        Repository
	earnings    earningsSource
	banks       bankGate
	merchants   merchantGate
	stripe      StripePayoutClient
	notifier    Notifier
	metrics     *metrics.PayoutMetrics
	logg        *logger.Logger
	currency    string
	callTimeout time.Duration
}

// NewService validates dependencies and returns the payout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payout repository required")
	}
	if params.Earnings == nil {
		return nil, fmt.Errorf("earnings source required")
	}
	if params.Banks == nil {
		return nil, fmt.Errorf("bank account service required")
	}
	if params.Merchants == nil {
		return nil, fmt.Errorf("merchant service required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe payout client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}
	callTimeout := params.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultStripeCallTimeout
	}
	return &service{
		repo:        params.Repo,
		earnings:    params.Earnings,
		banks:       params.Banks,
		merchants:   params.Merchants,
		stripe:      params.Stripe,
		notifier:    params.Notifier,
		metrics:     params.Metrics,
		logg:        params.Logger,
		currency:    currency,
		callTimeout: callTimeout,
	}, nil
}

// PendingEarnings is the settled net not yet covered by a payout:
// sum(amount - fee - refunded) over settled logs, minus scheduled and
// completed payouts. A negative balance means stored state disagrees
// with itself and is surfaced, never clamped.
func (s *service) PendingEarnings(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	if restaurantID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}

	logs, err := s.earnings.ListSettledLogsByRestaurant(ctx, restaurantID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settled payments")
	}

	var earned int64
	for _, log := range logs {
		earned += log.NetCents()
	}

	disbursed, err := s.repo.SumDisbursed(ctx, restaurantID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing payouts")
	}

	pending := earned - disbursed
	if pending < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeConsistency, "payouts exceed settled earnings").
			WithDetails(map[string]any{"earned_cents": earned, "disbursed_cents": disbursed})
	}
	return pending, nil
}

func (s *service) ConfigureSchedule(ctx context.Context, input ConfigureScheduleInput) (*ScheduleView, error) {
	if input.RestaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	if !input.Interval.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payout interval %q", input.Interval))
	}
	if input.MinimumCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum must not be negative")
	}
	switch input.Interval {
	case enums.PayoutIntervalWeekly:
		if input.AnchorDay < 0 || input.AnchorDay > 6 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "weekly anchor day must be between 0 (Sunday) and 6")
		}
	case enums.PayoutIntervalMonthly:
		if input.AnchorDay < 1 || input.AnchorDay > 31 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "monthly anchor day must be between 1 and 31")
		}
	}

	schedule := &models.PayoutSchedule{
		RestaurantID: input.RestaurantID,
		Interval:     input.Interval,
		AnchorDay:    input.AnchorDay,
		MinimumCents: input.MinimumCents,
		Enabled:      input.Enabled,
	}
	if err := s.repo.UpsertSchedule(ctx, schedule); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting payout schedule")
	}

	loggedCtx := s.logg.WithRestaurantID(ctx, input.RestaurantID.String())
	s.logg.Info(loggedCtx, "payout schedule configured")

	return &ScheduleView{
		Schedule:     schedule,
		NextPayoutAt: NextPayoutDate(schedule.Interval, schedule.AnchorDay, time.Now().UTC()),
	}, nil
}

func (s *service) GetSchedule(ctx context.Context, restaurantID uuid.UUID) (*ScheduleView, error) {
	if restaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	schedule, err := s.repo.GetSchedule(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payout schedule")
	}
	if schedule == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout schedule not found")
	}
	return &ScheduleView{
		Schedule:     schedule,
		NextPayoutAt: NextPayoutDate(schedule.Interval, schedule.AnchorDay, time.Now().UTC()),
	}, nil
}

func (s *service) TriggerManual(ctx context.Context, restaurantID uuid.UUID) (*models.PayoutRecord, error) {
	if restaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}

	pending, err := s.PendingEarnings(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if pending <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no pending earnings to disburse")
	}

	// Manual triggers bypass the cadence and the enabled switch, never the
	// configured minimum.
	schedule, err := s.repo.GetSchedule(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payout schedule")
	}
	if schedule != nil && pending < schedule.MinimumCents {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pending earnings are below the configured minimum").
			WithDetails(map[string]any{"pending_cents": pending, "minimum_cents": schedule.MinimumCents})
	}

	hasBank, err := s.banks.HasActive(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if !hasBank {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no active bank account on file")
	}

	return s.disburse(ctx, restaurantID, pending, true, "manual")
}

func (s *service) RunSweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	schedules, err := s.repo.ListSchedules(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payout schedules")
	}

	result := &SweepResult{}
	var sweepErr error

	// One restaurant failing must not starve the rest of the sweep.
	for _, schedule := range schedules {
		result.Examined++
		disbursed, err := s.sweepOne(ctx, schedule, now)
		if err != nil {
			result.Failed++
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("restaurant %s: %w", schedule.RestaurantID, err))
			continue
		}
		if disbursed {
			result.Disbursed++
		} else {
			result.Skipped++
		}
	}

	return result, sweepErr
}

func (s *service) sweepOne(ctx context.Context, schedule models.PayoutSchedule, now time.Time) (bool, error) {
	if schedule.Interval == enums.PayoutIntervalManual {
		return false, nil
	}
	if !schedule.Enabled {
		s.metrics.IncSkipped("disabled")
		return false, nil
	}

	// Due-ness is anchored at the later of the last completed payout and
	// the last schedule change, so edits never trigger retroactive runs.
	anchor := schedule.UpdatedAt
	lastCompleted, err := s.repo.LastCompletedAt(ctx, schedule.RestaurantID)
	if err != nil {
		return false, err
	}
	if lastCompleted != nil && lastCompleted.After(anchor) {
		anchor = *lastCompleted
	}
	next := NextPayoutDate(schedule.Interval, schedule.AnchorDay, anchor)
	if next == nil || next.After(now) {
		return false, nil
	}

	pending, err := s.PendingEarnings(ctx, schedule.RestaurantID)
	if err != nil {
		return false, err
	}
	if pending <= 0 || pending < schedule.MinimumCents {
		s.metrics.IncSkipped("below_minimum")
		return false, nil
	}

	hasBank, err := s.banks.HasActive(ctx, schedule.RestaurantID)
	if err != nil {
		return false, err
	}
	if !hasBank {
		s.metrics.IncSkipped("missing_bank_info")
		if s.notifier != nil {
			if err := s.notifier.PayoutBlocked(ctx, schedule.RestaurantID, "no active bank account on file"); err != nil {
				s.logg.Warn(s.logg.WithRestaurantID(ctx, schedule.RestaurantID.String()), "payout blocked notification failed")
			}
		}
		return false, nil
	}

	if _, err := s.disburse(ctx, schedule.RestaurantID, pending, false, string(schedule.Interval)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) disburse(ctx context.Context, restaurantID uuid.UUID, amountCents int64, manual bool, intervalLabel string) (*models.PayoutRecord, error) {
	merchant, err := s.merchants.GetAccount(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if !merchant.PayoutsEnabled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payouts are not enabled for this merchant")
	}

	record := &models.PayoutRecord{
		RestaurantID: restaurantID,
		AmountCents:  amountCents,
		Currency:     s.currency,
		Status:       enums.PayoutStatusScheduled,
		Manual:       manual,
	}
	if err := s.repo.CreateRecord(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting payout record")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	loggedCtx := s.logg.WithRestaurantID(ctx, restaurantID.String())

	stripePayout, err := s.stripe.CreatePayout(callCtx, merchant.StripeAccountID, &stripe.PayoutParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(s.currency),
	})
	if err != nil {
		if record.Status.CanTransitionTo(enums.PayoutStatusFailed) {
			if _, markErr := s.repo.MarkRecordFailed(ctx, record.ID, err.Error()); markErr != nil {
				s.logg.Error(loggedCtx, "marking payout record failed", markErr)
			}
		}
		s.metrics.IncFailure()
		if s.notifier != nil {
			if nErr := s.notifier.PayoutFailed(ctx, restaurantID, amountCents, err.Error()); nErr != nil {
				s.logg.Warn(loggedCtx, "payout failed notification failed")
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payout")
	}

	now := time.Now().UTC()
	if !record.Status.CanTransitionTo(enums.PayoutStatusCompleted) {
		return nil, pkgerrors.New(pkgerrors.CodeConsistency, "payout record left the scheduled state")
	}
	completed, err := s.repo.MarkRecordCompleted(ctx, record.ID, stripePayout.ID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking payout record completed")
	}
	if !completed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payout record changed concurrently")
	}

	record.Status = enums.PayoutStatusCompleted
	record.StripePayoutID = &stripePayout.ID
	record.CompletedAt = &now

	s.metrics.AddDisbursed(intervalLabel, amountCents)
	s.logg.Info(loggedCtx, "payout completed")

	if s.notifier != nil {
		if err := s.notifier.PayoutCompleted(ctx, restaurantID, amountCents); err != nil {
			s.logg.Warn(loggedCtx, "payout completed notification failed")
		}
	}

	return record, nil
}

func (s *service) History(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.PayoutRecord, error) {
	if restaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	records, err := s.repo.ListRecordsByRestaurant(ctx, restaurantID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payout records")
	}
	return records, nil
}
