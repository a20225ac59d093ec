package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/mealora/mealora-backend/internal/fees"
	pkgauth "github.com/mealora/mealora-backend/pkg/auth"
	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

const defaultStripeCallTimeout = 10 * time.Second

// Service orchestrates payment intents, confirmation and refunds.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error)
	GetIntentStatus(ctx context.Context, orderID uuid.UUID, caller pkgauth.Caller) (*IntentStatus, error)
	Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error)
	Refund(ctx context.Context, input RefundInput) (*models.PaymentLog, error)
	RecordProviderFailure(ctx context.Context, orderID uuid.UUID, intentID, reason string) error
}

// CreateIntentInput carries everything needed to open a payment attempt.
type CreateIntentInput struct {
	OrderID uuid.UUID
	Caller  pkgauth.Caller
	// FeeOverrideCents replaces the percentage fee when set. Must stay
	// within [0, order total].
	FeeOverrideCents *int64
}

// IntentResult pairs the stored log with the secret the client confirms with.
type IntentResult struct {
	Log          *models.PaymentLog
	ClientSecret string
}

// IntentStatus reports where the active payment attempt stands.
type IntentStatus struct {
	Log            *models.PaymentLog
	ProviderStatus stripe.PaymentIntentStatus
}

// ConfirmInput identifies the attempt the caller believes succeeded.
type ConfirmInput struct {
	OrderID  uuid.UUID
	IntentID string
	Caller   pkgauth.Caller
	// ProviderConfirmed skips the provider lookup and the caller check when
	// the caller already holds a verified success event (webhook path).
	ProviderConfirmed bool
}

// ConfirmOutcome is the result class of a confirmation attempt.
type ConfirmOutcome string

const (
	// ConfirmOutcomePaid means the payment settled and the order is paid.
	ConfirmOutcomePaid ConfirmOutcome = "paid"
	// ConfirmOutcomePending means the provider is still processing the
	// intent; nothing was mutated and the caller should poll again.
	ConfirmOutcomePending ConfirmOutcome = "pending"
)

// ConfirmResult pairs the payment log with the confirmation outcome.
type ConfirmResult struct {
	Log     *models.PaymentLog
	Outcome ConfirmOutcome
}

// RefundInput requests a refund against the order's settled payment.
type RefundInput struct {
	OrderID uuid.UUID
	Caller  pkgauth.Caller
	// AmountCents refunds the full remaining amount when nil.
	AmountCents *int64
}

type merchantGate interface {
	CanReceivePayments(ctx context.Context, restaurantID uuid.UUID) (bool, error)
	GetAccount(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error)
}

// Notifier fans out payment events to the parties of the order.
type Notifier interface {
	OrderPaid(ctx context.Context, restaurantID, orderID uuid.UUID, amountCents int64) error
	RefundIssued(ctx context.Context, restaurantID, orderID uuid.UUID, amountCents int64) error
	RefundReceived(ctx context.Context, customerID, orderID uuid.UUID, amountCents int64) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the payment service dependencies.
type ServiceParams struct {
	Repo        Repository
	Merchants   merchantGate
	Fees        *fees.Calculator
	Stripe      StripePaymentClient
	Notifier    Notifier
	Tx          txRunner
	Logger      *logger.Logger
	Currency    string
	CallTimeout time.Duration
}

type service struct {
	repo        Repository
	merchants   merchantGate
	fees        *fees.Calculator
	stripe      StripePaymentClient
	notifier    Notifier
	tx          txRunner
	logg        *logger.Logger
	currency    string
	callTimeout time.Duration
}

// NewService validates dependencies and returns the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Merchants == nil {
		return nil, fmt.Errorf("merchant service required")
	}
	if params.Fees == nil {
		return nil, fmt.Errorf("fee calculator required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe payment client required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
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
		merchants:   params.Merchants,
		fees:        params.Fees,
		stripe:      params.Stripe,
		notifier:    params.Notifier,
		tx:          params.Tx,
		logg:        params.Logger,
		currency:    currency,
		callTimeout: callTimeout,
	}, nil
}

// requireOrderCustomer admits only the customer who placed the order.
func requireOrderCustomer(caller pkgauth.Caller, order *models.Order) error {
	if caller.Actor == enums.ActorTypeCustomer && caller.UserID == order.CustomerID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
}

// requireOrderParty admits the owning customer or the order's restaurant.
func requireOrderParty(caller pkgauth.Caller, order *models.Order) error {
	switch caller.Actor {
	case enums.ActorTypeCustomer:
		if caller.UserID == order.CustomerID {
			return nil
		}
	case enums.ActorTypeRestaurant:
		if caller.RestaurantID != nil && *caller.RestaurantID == order.RestaurantID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not a party to this order")
}

func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.repo.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := requireOrderCustomer(input.Caller, order); err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
	}
	if order.PaymentStatus != enums.PaymentStatusPending && order.PaymentStatus != enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order payment is already settled")
	}

	canReceive, err := s.merchants.CanReceivePayments(ctx, order.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !canReceive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "restaurant cannot receive payments")
	}

	feeCents, _, err := s.fees.SplitWithOverride(order.TotalCents, input.FeeOverrideCents)
	if err != nil {
		return nil, err
	}

	merchant, err := s.merchants.GetAccount(ctx, order.RestaurantID)
	if err != nil {
		return nil, err
	}

	priorLog, err := s.repo.GetActiveLog(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment log")
	}
	if priorLog != nil && priorLog.Status != enums.PaymentLogStatusCreated && priorLog.Status != enums.PaymentLogStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order payment is already settled")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	intent, err := s.stripe.CreateIntent(callCtx, &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(order.TotalCents),
		Currency:             stripe.String(s.currency),
		ApplicationFeeAmount: stripe.Int64(feeCents),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(merchant.StripeAccountID),
		},
		Metadata: map[string]string{"order_id": order.ID.String()},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment intent")
	}

	log := &models.PaymentLog{
		OrderID:             order.ID,
		RestaurantID:        order.RestaurantID,
		StripeIntentID:      intent.ID,
		AmountCents:         order.TotalCents,
		ApplicationFeeCents: feeCents,
		Currency:            s.currency,
		Status:              enums.PaymentLogStatusCreated,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if priorLog != nil {
			replaced, err := txRepo.MarkLogReplaced(ctx, order.ID, priorLog.StripeIntentID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing payment log")
			}
			if !replaced {
				return pkgerrors.New(pkgerrors.CodeConflict, "payment attempt changed concurrently")
			}
		}
		if err := txRepo.CreateLog(ctx, log); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting payment log")
		}
		// A fresh attempt reopens a failed payment: failed -> pending is the
		// only legal way back toward paid.
		if order.PaymentStatus == enums.PaymentStatusFailed {
			moved, err := txRepo.UpdateOrderPaymentStatus(ctx, order.ID, enums.PaymentStatusFailed, enums.PaymentStatusPending)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reopening order payment")
			}
			if !moved {
				return pkgerrors.New(pkgerrors.CodeConflict, "order payment state changed concurrently")
			}
		}
		return nil
	})
	if err != nil {
		// The fresh intent is orphaned; cancel it so it cannot be confirmed.
		s.cancelIntentBestEffort(ctx, intent.ID)
		return nil, err
	}

	if priorLog != nil && priorLog.Status == enums.PaymentLogStatusCreated {
		s.cancelIntentBestEffort(ctx, priorLog.StripeIntentID)
	}

	loggedCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(loggedCtx, "payment intent created")

	return &IntentResult{Log: log, ClientSecret: intent.ClientSecret}, nil
}

func (s *service) GetIntentStatus(ctx context.Context, orderID uuid.UUID, caller pkgauth.Caller) (*IntentStatus, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := requireOrderParty(caller, order); err != nil {
		return nil, err
	}

	log, err := s.repo.GetActiveLog(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment log")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment attempt for order")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	intent, err := s.stripe.GetIntent(callCtx, log.StripeIntentID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching payment intent")
	}

	return &IntentStatus{Log: log, ProviderStatus: intent.Status}, nil
}

func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.IntentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id is required")
	}

	order, err := s.repo.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !input.ProviderConfirmed {
		if err := requireOrderCustomer(input.Caller, order); err != nil {
			return nil, err
		}
	}

	log, err := s.repo.GetActiveLog(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment log")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no payment attempt for order")
	}
	if log.StripeIntentID != input.IntentID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "intent does not match the active payment attempt")
	}

	// Idempotent replay: the attempt already settled with this intent.
	if log.Status == enums.PaymentLogStatusSucceeded && order.PaymentStatus == enums.PaymentStatusPaid {
		return &ConfirmResult{Log: log, Outcome: ConfirmOutcomePaid}, nil
	}
	if log.Status != enums.PaymentLogStatusCreated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment attempt is not confirmable")
	}
	if !order.PaymentStatus.CanTransitionTo(enums.PaymentStatusPaid) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order payment state cannot settle")
	}

	if !input.ProviderConfirmed {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		intent, err := s.stripe.GetIntent(callCtx, input.IntentID, nil)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verifying payment intent")
		}
		switch intent.Status {
		case stripe.PaymentIntentStatusSucceeded:
			// Settle below.
		case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusCanceled:
			// The attempt is dead at the provider; record that so the
			// customer can open a fresh one.
			reason := "payment method declined"
			if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
				reason = intent.LastPaymentError.Msg
			}
			if err := s.failAttempt(ctx, input.OrderID, input.IntentID, reason); err != nil {
				return nil, err
			}
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment attempt failed at the provider")
		case stripe.PaymentIntentStatusProcessing,
			stripe.PaymentIntentStatusRequiresAction,
			stripe.PaymentIntentStatusRequiresConfirmation,
			stripe.PaymentIntentStatusRequiresCapture:
			// Still in flight: report pending without touching stored state.
			return &ConfirmResult{Log: log, Outcome: ConfirmOutcomePending}, nil
		default:
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment intent has not succeeded")
		}
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		flipped, err := txRepo.MarkLogSucceeded(ctx, input.OrderID, input.IntentID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking payment log succeeded")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeConflict, "payment attempt changed concurrently")
		}

		paid, err := txRepo.MarkOrderPaid(ctx, input.OrderID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order paid")
		}
		if !paid {
			return pkgerrors.New(pkgerrors.CodeConflict, "order payment state changed concurrently")
		}

		// Settling the payment confirms a still-pending order.
		if order.Status.CanTransitionTo(enums.OrderStatusConfirmed) {
			if _, err := txRepo.UpdateOrderStatus(ctx, order.ID, order.Status, enums.OrderStatusConfirmed); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirming order")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Status = enums.PaymentLogStatusSucceeded
	log.SucceededAt = &now

	loggedCtx := s.logg.WithOrderID(ctx, input.OrderID.String())
	s.logg.Info(loggedCtx, "payment confirmed")

	if s.notifier != nil {
		if err := s.notifier.OrderPaid(ctx, log.RestaurantID, log.OrderID, log.AmountCents); err != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, log.OrderID.String()), "order paid notification failed")
		}
	}

	return &ConfirmResult{Log: log, Outcome: ConfirmOutcomePaid}, nil
}

func (s *service) Refund(ctx context.Context, input RefundInput) (*models.PaymentLog, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.repo.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := requireOrderParty(input.Caller, order); err != nil {
		return nil, err
	}
	if !order.PaymentStatus.IsSettled() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no settled payment to refund")
	}

	log, err := s.repo.GetActiveLog(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment log")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConsistency, "settled order has no payment log")
	}

	remaining := log.AmountCents - log.RefundedCents
	if remaining <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is already fully refunded")
	}

	requested := remaining
	if input.AmountCents != nil {
		requested = *input.AmountCents
	}
	if requested <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if requested > remaining {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds the refundable remainder")
	}

	newRefunded := log.RefundedCents + requested
	newLogStatus := enums.PaymentLogStatusPartiallyRefunded
	newOrderStatus := enums.PaymentStatusPartiallyRefunded
	if newRefunded == log.AmountCents {
		newLogStatus = enums.PaymentLogStatusRefunded
		newOrderStatus = enums.PaymentStatusRefunded
	}
	if !order.PaymentStatus.CanTransitionTo(newOrderStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeConsistency, "order payment state does not admit this refund").
			WithDetails(map[string]any{"from": order.PaymentStatus, "to": newOrderStatus})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	_, err = s.stripe.CreateRefund(callCtx, &stripe.RefundParams{
		PaymentIntent: stripe.String(log.StripeIntentID),
		Amount:        stripe.Int64(requested),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating refund")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		applied, err := txRepo.ApplyRefund(ctx, log.ID, log.RefundedCents, newRefunded, newLogStatus)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording refund")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeConflict, "refund state changed concurrently")
		}

		moved, err := txRepo.UpdateOrderPaymentStatus(ctx, order.ID, order.PaymentStatus, newOrderStatus)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order payment status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeConflict, "order payment state changed concurrently")
		}

		// A full refund cancels the order unless delivery already finished.
		if newLogStatus == enums.PaymentLogStatusRefunded && order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
			if _, err := txRepo.UpdateOrderStatus(ctx, order.ID, order.Status, enums.OrderStatusCancelled); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling order")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.RefundedCents = newRefunded
	log.Status = newLogStatus

	loggedCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(loggedCtx, "refund issued")

	// The counterparty gets told: customers hear about refunds a restaurant
	// issued, restaurants hear about refunds a customer initiated.
	if s.notifier != nil {
		var notifyErr error
		if input.Caller.Actor == enums.ActorTypeRestaurant {
			notifyErr = s.notifier.RefundReceived(ctx, order.CustomerID, log.OrderID, requested)
		} else {
			notifyErr = s.notifier.RefundIssued(ctx, log.RestaurantID, log.OrderID, requested)
		}
		if notifyErr != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, log.OrderID.String()), "refund notification failed")
		}
	}

	return log, nil
}

// RecordProviderFailure marks the active attempt failed after the provider
// reported it. Events for a replaced or already settled attempt are ignored.
func (s *service) RecordProviderFailure(ctx context.Context, orderID uuid.UUID, intentID, reason string) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if intentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "intent id is required")
	}

	log, err := s.repo.GetActiveLog(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment log")
	}
	if log == nil || log.StripeIntentID != intentID {
		// Stale event: the attempt was replaced or never recorded here.
		return nil
	}
	if log.Status != enums.PaymentLogStatusCreated {
		return nil
	}

	return s.failAttempt(ctx, orderID, intentID, reason)
}

// failAttempt flips the active log to failed and parks the order payment in
// failed, losing gracefully when a concurrent writer got there first.
func (s *service) failAttempt(ctx context.Context, orderID uuid.UUID, intentID, reason string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		flipped, err := txRepo.MarkLogFailed(ctx, orderID, intentID, reason)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking payment log failed")
		}
		if !flipped {
			return nil
		}

		if _, err := txRepo.UpdateOrderPaymentStatus(ctx, orderID, enums.PaymentStatusPending, enums.PaymentStatusFailed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order payment status")
		}

		loggedCtx := s.logg.WithOrderID(ctx, orderID.String())
		s.logg.Info(loggedCtx, "payment attempt failed")
		return nil
	})
}

func (s *service) cancelIntentBestEffort(ctx context.Context, intentID string) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	if _, err := s.stripe.CancelIntent(callCtx, intentID, nil); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "intent_id", intentID), "cancelling stale payment intent failed")
	}
}
