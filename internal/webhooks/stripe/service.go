package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/mealora/mealora-backend/internal/payments"
	"github.com/mealora/mealora-backend/pkg/db/models"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

// metadataOrderID is stamped on every payment intent at creation.
const metadataOrderID = "order_id"

type paymentService interface {
	Confirm(ctx context.Context, input payments.ConfirmInput) (*payments.ConfirmResult, error)
	RecordProviderFailure(ctx context.Context, orderID uuid.UUID, intentID, reason string) error
}

type merchantRefresher interface {
	RefreshStatus(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error)
}

// ServiceParams wires the webhook event handler.
type ServiceParams struct {
	Payments  paymentService
	Merchants merchantRefresher
	Logger    *logger.Logger
}

// Service routes verified Stripe events to the owning domain service.
type Service struct {
	payments  paymentService
	merchants merchantRefresher
	logg      *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment service required")
	}
	if params.Merchants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "merchant service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		payments:  params.Payments,
		merchants: params.Merchants,
		logg:      params.Logger,
	}, nil
}

// HandleEvent dispatches one verified event. Event types the platform does
// not care about return nil so Stripe stops retrying them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return s.handleIntentSucceeded(ctx, event)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.handleIntentFailed(ctx, event)
	case stripe.EventTypeAccountUpdated:
		return s.handleAccountUpdated(ctx, event)
	default:
		return nil
	}
}

func (s *Service) handleIntentSucceeded(ctx context.Context, event *stripe.Event) error {
	intent, orderID, err := decodeIntentEvent(event)
	if err != nil {
		return err
	}

	// The event already proves provider-side success, no lookback needed.
	_, err = s.payments.Confirm(ctx, payments.ConfirmInput{
		OrderID:           orderID,
		IntentID:          intent.ID,
		ProviderConfirmed: true,
	})
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeConflict {
			// A replaced attempt settled late. Nothing to record against the
			// current attempt, and retrying will not change that.
			s.logg.Warn(s.logg.WithOrderID(ctx, orderID.String()), "success event for a superseded payment intent")
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) handleIntentFailed(ctx context.Context, event *stripe.Event) error {
	intent, orderID, err := decodeIntentEvent(event)
	if err != nil {
		return err
	}

	reason := "payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		reason = intent.LastPaymentError.Msg
	}
	return s.payments.RecordProviderFailure(ctx, orderID, intent.ID, reason)
}

func (s *Service) handleAccountUpdated(ctx context.Context, event *stripe.Event) error {
	var account stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode account event")
	}

	raw := account.Metadata["restaurant_id"]
	if raw == "" {
		// Not a merchant account this platform provisioned.
		return nil
	}
	restaurantID, err := uuid.Parse(raw)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "restaurant id metadata malformed")
	}
	if _, err := s.merchants.RefreshStatus(ctx, restaurantID); err != nil {
		return err
	}
	return nil
}

func decodeIntentEvent(event *stripe.Event) (*stripe.PaymentIntent, uuid.UUID, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	raw := intent.Metadata[metadataOrderID]
	if raw == "" {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id metadata missing from intent")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order id metadata malformed")
	}
	return &intent, orderID, nil
}
