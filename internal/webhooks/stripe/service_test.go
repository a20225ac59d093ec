package stripewebhook

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/mealora/mealora-backend/internal/payments"
	"github.com/mealora/mealora-backend/pkg/db/models"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

type stubPayments struct {
	confirmed  []payments.ConfirmInput
	confirmErr error
	failures   []string
}

func (s *stubPayments) Confirm(ctx context.Context, input payments.ConfirmInput) (*payments.ConfirmResult, error) {
	s.confirmed = append(s.confirmed, input)
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return &payments.ConfirmResult{
		Log:     &models.PaymentLog{OrderID: input.OrderID, StripeIntentID: input.IntentID},
		Outcome: payments.ConfirmOutcomePaid,
	}, nil
}

func (s *stubPayments) RecordProviderFailure(ctx context.Context, orderID uuid.UUID, intentID, reason string) error {
	s.failures = append(s.failures, intentID+":"+reason)
	return nil
}

type stubMerchantRefresher struct {
	refreshed []uuid.UUID
}

func (s *stubMerchantRefresher) RefreshStatus(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error) {
	s.refreshed = append(s.refreshed, restaurantID)
	return &models.MerchantAccount{RestaurantID: restaurantID}, nil
}

func newWebhookService(t *testing.T, pay *stubPayments, merch *stubMerchantRefresher) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Payments:  pay,
		Merchants: merch,
		Logger:    logger.New(logger.Options{ServiceName: "webhook-test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

func intentEvent(t *testing.T, eventType stripe.EventType, intent *stripe.PaymentIntent) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(intent)
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	return &stripe.Event{Type: eventType, Data: &stripe.EventData{Raw: raw}}
}

func TestHandleEventIntentSucceededConfirmsPayment(t *testing.T) {
	pay := &stubPayments{}
	service := newWebhookService(t, pay, &stubMerchantRefresher{})
	orderID := uuid.New()

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, &stripe.PaymentIntent{
		ID:       "pi_123",
		Metadata: map[string]string{"order_id": orderID.String()},
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(pay.confirmed) != 1 {
		t.Fatalf("expected one confirmation, got %d", len(pay.confirmed))
	}
	input := pay.confirmed[0]
	if input.OrderID != orderID || input.IntentID != "pi_123" || !input.ProviderConfirmed {
		t.Fatalf("unexpected confirm input %+v", input)
	}
}

func TestHandleEventSupersededIntentIsDropped(t *testing.T) {
	pay := &stubPayments{
		confirmErr: pkgerrors.New(pkgerrors.CodeConflict, "intent does not match the active payment attempt"),
	}
	service := newWebhookService(t, pay, &stubMerchantRefresher{})

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, &stripe.PaymentIntent{
		ID:       "pi_old",
		Metadata: map[string]string{"order_id": uuid.New().String()},
	})
	// Conflicts are final: returning nil stops Stripe from retrying.
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
}

func TestHandleEventIntentFailedRecordsFailure(t *testing.T) {
	pay := &stubPayments{}
	service := newWebhookService(t, pay, &stubMerchantRefresher{})

	event := intentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, &stripe.PaymentIntent{
		ID:               "pi_456",
		Metadata:         map[string]string{"order_id": uuid.New().String()},
		LastPaymentError: &stripe.Error{Msg: "card declined"},
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(pay.failures) != 1 || pay.failures[0] != "pi_456:card declined" {
		t.Fatalf("failures = %v", pay.failures)
	}
}

func TestHandleEventAccountUpdatedRefreshesMerchant(t *testing.T) {
	merch := &stubMerchantRefresher{}
	service := newWebhookService(t, &stubPayments{}, merch)
	restaurantID := uuid.New()

	account := &stripe.Account{Metadata: map[string]string{"restaurant_id": restaurantID.String()}}
	raw, err := json.Marshal(account)
	if err != nil {
		t.Fatalf("marshal account: %v", err)
	}
	event := &stripe.Event{Type: stripe.EventTypeAccountUpdated, Data: &stripe.EventData{Raw: raw}}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(merch.refreshed) != 1 || merch.refreshed[0] != restaurantID {
		t.Fatalf("refreshed = %v", merch.refreshed)
	}
}

func TestHandleEventIgnoresForeignAccounts(t *testing.T) {
	merch := &stubMerchantRefresher{}
	service := newWebhookService(t, &stubPayments{}, merch)

	raw, _ := json.Marshal(&stripe.Account{})
	event := &stripe.Event{Type: stripe.EventTypeAccountUpdated, Data: &stripe.EventData{Raw: raw}}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(merch.refreshed) != 0 {
		t.Fatal("accounts without restaurant metadata must be ignored")
	}
}

func TestHandleEventMissingOrderMetadata(t *testing.T) {
	service := newWebhookService(t, &stubPayments{}, &stubMerchantRefresher{})

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, &stripe.PaymentIntent{ID: "pi_789"})
	err := service.HandleEvent(context.Background(), event)
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("code = %s, want %s", pkgerrors.As(err).Code(), pkgerrors.CodeValidation)
	}
}

func TestHandleEventUnknownTypeIsNoop(t *testing.T) {
	pay := &stubPayments{}
	service := newWebhookService(t, pay, &stubMerchantRefresher{})

	event := &stripe.Event{Type: stripe.EventType("charge.captured"), Data: &stripe.EventData{Raw: []byte(`{}`)}}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(pay.confirmed) != 0 || len(pay.failures) != 0 {
		t.Fatal("unknown events must not touch payments")
	}
}
