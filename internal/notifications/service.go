package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

// Service records notifications and pushes them to the event sink.
// Restaurant recipients are keyed by restaurant id, customers by user id.
type Service interface {
	OrderPaid(ctx context.Context, restaurantID, orderID uuid.UUID, amountCents int64) error
	RefundIssued(ctx context.Context, restaurantID, orderID uuid.UUID, amountCents int64) error
	RefundReceived(ctx context.Context, customerID, orderID uuid.UUID, amountCents int64) error
	PayoutCompleted(ctx context.Context, restaurantID uuid.UUID, amountCents int64) error
	PayoutFailed(ctx context.Context, restaurantID uuid.UUID, amountCents int64, reason string) error
	PayoutBlocked(ctx context.Context, restaurantID uuid.UUID, reason string) error
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, recipientType enums.ActorType, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error
}

// Publisher pushes serialized notification events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

// ServiceParams wires the notification service dependencies.
type ServiceParams struct {
	Repo      Repository
	Publisher Publisher
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	publisher Publisher
	logg      *logger.Logger
}

// NewService validates dependencies and returns the notification service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      params.Repo,
		publisher: params.Publisher,
		logg:      params.Logger,
	}, nil
}

type notificationEvent struct {
	Type          enums.NotificationType `json:"type"`
	RecipientID   uuid.UUID              `json:"recipient_id"`
	RecipientType enums.ActorType        `json:"recipient_type"`
	OrderID       *uuid.UUID             `json:"order_id,omitempty"`
	AmountCents   *int64                 `json:"amount_cents,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

func (s *service) OrderPaid(ctx context.Context, restaurantID, orderID uuid.UUID, amountCents int64) error {
	return s.record(ctx, &models.Notification{
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		Type:          enums.NotificationTypeOrderPaid,
		Title:         "Order paid",
		Message:       fmt.Sprintf("Order %s was paid (%d cents).", orderID, amountCents),
	}, notificationEvent{
		Type:          enums.NotificationTypeOrderPaid,
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		OrderID:       &orderID,
		AmountCents:   &amountCents,
	})
}

func (s *service) RefundIssued(ctx context.Context, restaurantID, orderID uuid.UUID, amountCents int64) error {
	return s.record(ctx, &models.Notification{
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		Type:          enums.NotificationTypeRefundIssued,
		Title:         "Refund issued",
		Message:       fmt.Sprintf("A refund of %d cents was issued against order %s.", amountCents, orderID),
	}, notificationEvent{
		Type:          enums.NotificationTypeRefundIssued,
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		OrderID:       &orderID,
		AmountCents:   &amountCents,
	})
}

func (s *service) RefundReceived(ctx context.Context, customerID, orderID uuid.UUID, amountCents int64) error {
	return s.record(ctx, &models.Notification{
		RecipientID:   customerID,
		RecipientType: enums.ActorTypeCustomer,
		Type:          enums.NotificationTypeRefundIssued,
		Title:         "Refund on its way",
		Message:       fmt.Sprintf("A refund of %d cents for order %s is on its way back to you.", amountCents, orderID),
	}, notificationEvent{
		Type:          enums.NotificationTypeRefundIssued,
		RecipientID:   customerID,
		RecipientType: enums.ActorTypeCustomer,
		OrderID:       &orderID,
		AmountCents:   &amountCents,
	})
}

func (s *service) PayoutCompleted(ctx context.Context, restaurantID uuid.UUID, amountCents int64) error {
	return s.record(ctx, &models.Notification{
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		Type:          enums.NotificationTypePayoutCompleted,
		Title:         "Payout sent",
		Message:       fmt.Sprintf("A payout of %d cents is on its way.", amountCents),
	}, notificationEvent{
		Type:          enums.NotificationTypePayoutCompleted,
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		AmountCents:   &amountCents,
	})
}

func (s *service) PayoutFailed(ctx context.Context, restaurantID uuid.UUID, amountCents int64, reason string) error {
	return s.record(ctx, &models.Notification{
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		Type:          enums.NotificationTypePayoutFailed,
		Title:         "Payout failed",
		Message:       fmt.Sprintf("A payout of %d cents failed: %s", amountCents, reason),
	}, notificationEvent{
		Type:          enums.NotificationTypePayoutFailed,
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		AmountCents:   &amountCents,
		Reason:        reason,
	})
}

func (s *service) PayoutBlocked(ctx context.Context, restaurantID uuid.UUID, reason string) error {
	return s.record(ctx, &models.Notification{
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		Type:          enums.NotificationTypePayoutBlocked,
		Title:         "Payout blocked",
		Message:       fmt.Sprintf("Your payout could not be scheduled: %s", reason),
	}, notificationEvent{
		Type:          enums.NotificationTypePayoutBlocked,
		RecipientID:   restaurantID,
		RecipientType: enums.ActorTypeRestaurant,
		Reason:        reason,
	})
}

func (s *service) ListForRecipient(ctx context.Context, recipientID uuid.UUID, recipientType enums.ActorType, limit int) ([]models.Notification, error) {
	if recipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id is required")
	}
	if !recipientType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient type is invalid")
	}
	notifications, err := s.repo.ListByRecipient(ctx, recipientID, recipientType, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing notifications")
	}
	return notifications, nil
}

func (s *service) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if recipientID == uuid.Nil || notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient id and notification id are required")
	}
	marked, err := s.repo.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking notification read")
	}
	if !marked {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) record(ctx context.Context, notification *models.Notification, event notificationEvent) error {
	if notification.RecipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient id is required")
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting notification")
	}

	// Event push is best effort; the stored row is the source of truth.
	if s.publisher != nil {
		event.OccurredAt = time.Now().UTC()
		payload, err := json.Marshal(event)
		if err == nil {
			err = s.publisher.Publish(ctx, payload)
		}
		if err != nil {
			s.logg.Warn(ctx, "publishing notification event failed")
		}
	}

	return nil
}
