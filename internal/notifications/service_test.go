package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

type stubRepo struct {
	created  []*models.Notification
	markedOK bool
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) Create(ctx context.Context, notification *models.Notification) error {
	s.created = append(s.created, notification)
	return nil
}
func (s *stubRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, recipientType enums.ActorType, limit int) ([]models.Notification, error) {
	return nil, nil
}
func (s *stubRepo) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error) {
	return s.markedOK, nil
}

type stubPublisher struct {
	published [][]byte
	err       error
}

func (s *stubPublisher) Publish(ctx context.Context, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, data)
	return nil
}

func newNotificationService(t *testing.T, repo Repository, pub Publisher) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Publisher: pub,
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestOrderPaidPersistsAndPublishes(t *testing.T) {
	repo := &stubRepo{}
	pub := &stubPublisher{}
	svc := newNotificationService(t, repo, pub)

	restaurantID := uuid.New()
	orderID := uuid.New()
	if err := svc.OrderPaid(context.Background(), restaurantID, orderID, 4590); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one stored notification, got %d", len(repo.created))
	}
	if repo.created[0].Type != enums.NotificationTypeOrderPaid {
		t.Fatalf("unexpected type %s", repo.created[0].Type)
	}
	if repo.created[0].RecipientType != enums.ActorTypeRestaurant {
		t.Fatalf("unexpected recipient type %s", repo.created[0].RecipientType)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}

	var event map[string]any
	if err := json.Unmarshal(pub.published[0], &event); err != nil {
		t.Fatalf("published event not json: %v", err)
	}
	if event["recipient_id"] != restaurantID.String() {
		t.Fatalf("recipient id not in event: %v", event)
	}
	if event["recipient_type"] != string(enums.ActorTypeRestaurant) {
		t.Fatalf("recipient type not in event: %v", event)
	}
}

func TestRefundReceivedTargetsCustomer(t *testing.T) {
	repo := &stubRepo{}
	pub := &stubPublisher{}
	svc := newNotificationService(t, repo, pub)

	customerID := uuid.New()
	if err := svc.RefundReceived(context.Background(), customerID, uuid.New(), 1500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one stored notification, got %d", len(repo.created))
	}
	stored := repo.created[0]
	if stored.RecipientID != customerID || stored.RecipientType != enums.ActorTypeCustomer {
		t.Fatalf("notification addressed to %s/%s, want the customer", stored.RecipientID, stored.RecipientType)
	}
	if stored.Type != enums.NotificationTypeRefundIssued {
		t.Fatalf("unexpected type %s", stored.Type)
	}
}

func TestPublisherFailureDoesNotFailRecording(t *testing.T) {
	repo := &stubRepo{}
	svc := newNotificationService(t, repo, &stubPublisher{err: errors.New("sink down")})

	if err := svc.PayoutCompleted(context.Background(), uuid.New(), 12000); err != nil {
		t.Fatalf("publisher failure must not surface: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatal("notification row should still be stored")
	}
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc := newNotificationService(t, &stubRepo{markedOK: false}, nil)
	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordRequiresRecipientID(t *testing.T) {
	svc := newNotificationService(t, &stubRepo{}, nil)
	err := svc.PayoutBlocked(context.Background(), uuid.Nil, "no bank info")
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
