package payouts

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

type stubPayoutRepo struct {
	getScheduleFn         func(ctx context.Context, restaurantID uuid.UUID) (*models.PayoutSchedule, error)
	upsertScheduleFn      func(ctx context.Context, schedule *models.PayoutSchedule) error
	listSchedulesFn       func(ctx context.Context) ([]models.PayoutSchedule, error)
	createRecordFn        func(ctx context.Context, record *models.PayoutRecord) error
	markCompletedFn       func(ctx context.Context, recordID uuid.UUID, stripePayoutID string, at time.Time) (bool, error)
	markFailedFn          func(ctx context.Context, recordID uuid.UUID, reason string) (bool, error)
	listRecordsFn         func(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.PayoutRecord, error)
	sumDisbursedFn        func(ctx context.Context, restaurantID uuid.UUID) (int64, error)
	lastCompletedAtFn     func(ctx context.Context, restaurantID uuid.UUID) (*time.Time, error)
	createdRecords        []*models.PayoutRecord
	failedRecordReasons   []string
	completedRecordStripe []string
}

func (s *stubPayoutRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPayoutRepo) GetSchedule(ctx context.Context, restaurantID uuid.UUID) (*models.PayoutSchedule, error) {
	if s.getScheduleFn != nil {
		return s.getScheduleFn(ctx, restaurantID)
	}
	return nil, nil
}

func (s *stubPayoutRepo) UpsertSchedule(ctx context.Context, schedule *models.PayoutSchedule) error {
	if s.upsertScheduleFn != nil {
		return s.upsertScheduleFn(ctx, schedule)
	}
	schedule.ID = uuid.New()
	return nil
}

func (s *stubPayoutRepo) ListSchedules(ctx context.Context) ([]models.PayoutSchedule, error) {
	if s.listSchedulesFn != nil {
		return s.listSchedulesFn(ctx)
	}
	return nil, nil
}

func (s *stubPayoutRepo) CreateRecord(ctx context.Context, record *models.PayoutRecord) error {
	if s.createRecordFn != nil {
		return s.createRecordFn(ctx, record)
	}
	record.ID = uuid.New()
	s.createdRecords = append(s.createdRecords, record)
	return nil
}

func (s *stubPayoutRepo) MarkRecordCompleted(ctx context.Context, recordID uuid.UUID, stripePayoutID string, at time.Time) (bool, error) {
	if s.markCompletedFn != nil {
		return s.markCompletedFn(ctx, recordID, stripePayoutID, at)
	}
	s.completedRecordStripe = append(s.completedRecordStripe, stripePayoutID)
	return true, nil
}

func (s *stubPayoutRepo) MarkRecordFailed(ctx context.Context, recordID uuid.UUID, reason string) (bool, error) {
	if s.markFailedFn != nil {
		return s.markFailedFn(ctx, recordID, reason)
	}
	s.failedRecordReasons = append(s.failedRecordReasons, reason)
	return true, nil
}

func (s *stubPayoutRepo) ListRecordsByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.PayoutRecord, error) {
	if s.listRecordsFn != nil {
		return s.listRecordsFn(ctx, restaurantID, limit)
	}
	return nil, nil
}

func (s *stubPayoutRepo) SumDisbursed(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	if s.sumDisbursedFn != nil {
		return s.sumDisbursedFn(ctx, restaurantID)
	}
	return 0, nil
}

func (s *stubPayoutRepo) LastCompletedAt(ctx context.Context, restaurantID uuid.UUID) (*time.Time, error) {
	if s.lastCompletedAtFn != nil {
		return s.lastCompletedAtFn(ctx, restaurantID)
	}
	return nil, nil
}

type stubEarnings struct {
	listFn func(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error)
}

func (s *stubEarnings) ListSettledLogsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error) {
	if s.listFn != nil {
		return s.listFn(ctx, restaurantID)
	}
	return nil, nil
}

type stubBanks struct {
	hasActiveFn func(ctx context.Context, restaurantID uuid.UUID) (bool, error)
}

func (s *stubBanks) HasActive(ctx context.Context, restaurantID uuid.UUID) (bool, error) {
	if s.hasActiveFn != nil {
		return s.hasActiveFn(ctx, restaurantID)
	}
	return true, nil
}

type stubMerchantGate struct {
	getFn func(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error)
}

func (s *stubMerchantGate) GetAccount(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error) {
	if s.getFn != nil {
		return s.getFn(ctx, restaurantID)
	}
	return &models.MerchantAccount{
		RestaurantID:    restaurantID,
		StripeAccountID: "acct_test",
		Status:          enums.MerchantAccountStatusActive,
		ChargesEnabled:  true,
		PayoutsEnabled:  true,
	}, nil
}

type stubPayoutStripe struct {
	createFn func(ctx context.Context, accountID string, params *stripe.PayoutParams) (*stripe.Payout, error)
	calls    []string
}

func (s *stubPayoutStripe) CreatePayout(ctx context.Context, accountID string, params *stripe.PayoutParams) (*stripe.Payout, error) {
	s.calls = append(s.calls, accountID)
	if s.createFn != nil {
		return s.createFn(ctx, accountID, params)
	}
	return &stripe.Payout{ID: "po_test"}, nil
}

type payoutNote struct {
	kind         string
	restaurantID uuid.UUID
	amountCents  int64
	reason       string
}

type stubPayoutNotifier struct {
	notes []payoutNote
}

func (s *stubPayoutNotifier) PayoutCompleted(ctx context.Context, restaurantID uuid.UUID, amountCents int64) error {
	s.notes = append(s.notes, payoutNote{kind: "completed", restaurantID: restaurantID, amountCents: amountCents})
	return nil
}

func (s *stubPayoutNotifier) PayoutFailed(ctx context.Context, restaurantID uuid.UUID, amountCents int64, reason string) error {
	s.notes = append(s.notes, payoutNote{kind: "failed", restaurantID: restaurantID, amountCents: amountCents, reason: reason})
	return nil
}

func (s *stubPayoutNotifier) PayoutBlocked(ctx context.Context, restaurantID uuid.UUID, reason string) error {
	s.notes = append(s.notes, payoutNote{kind: "blocked", restaurantID: restaurantID, reason: reason})
	return nil
}

type payoutFixture struct {
	repo      *stubPayoutRepo
	earnings  *stubEarnings
	banks     *stubBanks
	merchants *stubMerchantGate
	stripe    *stubPayoutStripe
	notifier  *stubPayoutNotifier
}

func newPayoutService(t *testing.T, fx *payoutFixture) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      fx.repo,
		Earnings:  fx.earnings,
		Banks:     fx.banks,
		Merchants: fx.merchants,
		Stripe:    fx.stripe,
		Notifier:  fx.notifier,
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Currency:  "usd",
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func defaultPayoutFixture() *payoutFixture {
	return &payoutFixture{
		repo:      &stubPayoutRepo{},
		earnings:  &stubEarnings{},
		banks:     &stubBanks{},
		merchants: &stubMerchantGate{},
		stripe:    &stubPayoutStripe{},
		notifier:  &stubPayoutNotifier{},
	}
}

func settledLog(amount, fee, refunded int64) models.PaymentLog {
	return models.PaymentLog{
		AmountCents:         amount,
		ApplicationFeeCents: fee,
		RefundedCents:       refunded,
		Status:              enums.PaymentLogStatusSucceeded,
	}
}

func TestPendingEarningsSubtractsFeesRefundsAndPayouts(t *testing.T) {
	fx := defaultPayoutFixture()
	fx.earnings.listFn = func(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{
			settledLog(10000, 500, 0),
			settledLog(4590, 230, 1000),
		}, nil
	}
	fx.repo.sumDisbursedFn = func(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
		return 5000, nil
	}
	svc := newPayoutService(t, fx)

	pending, err := svc.PendingEarnings(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("PendingEarnings: %v", err)
	}
	// (10000-500) + (4590-230-1000) - 5000
	if pending != 7860 {
		t.Fatalf("pending = %d, want 7860", pending)
	}
}

func TestPendingEarningsNegativeIsConsistencyError(t *testing.T) {
	fx := defaultPayoutFixture()
	fx.earnings.listFn = func(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(1000, 50, 0)}, nil
	}
	fx.repo.sumDisbursedFn = func(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
		return 2000, nil
	}
	svc := newPayoutService(t, fx)

	_, err := svc.PendingEarnings(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConsistency {
		t.Fatalf("code = %s, want %s", pkgerrors.As(err).Code(), pkgerrors.CodeConsistency)
	}
}

func TestConfigureScheduleValidation(t *testing.T) {
	svc := newPayoutService(t, defaultPayoutFixture())
	ctx := context.Background()

	cases := []ConfigureScheduleInput{
		{RestaurantID: uuid.New(), Interval: "fortnightly"},
		{RestaurantID: uuid.New(), Interval: enums.PayoutIntervalWeekly, AnchorDay: 7},
		{RestaurantID: uuid.New(), Interval: enums.PayoutIntervalMonthly, AnchorDay: 0},
		{RestaurantID: uuid.New(), Interval: enums.PayoutIntervalDaily, MinimumCents: -1},
	}
	for _, input := range cases {
		_, err := svc.ConfigureSchedule(ctx, input)
		if err == nil {
			t.Fatalf("expected validation error for %+v", input)
		}
		if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("code = %s, want %s", pkgerrors.As(err).Code(), pkgerrors.CodeValidation)
		}
	}
}

func TestConfigureScheduleReturnsNextDate(t *testing.T) {
	svc := newPayoutService(t, defaultPayoutFixture())

	view, err := svc.ConfigureSchedule(context.Background(), ConfigureScheduleInput{
		RestaurantID: uuid.New(),
		Interval:     enums.PayoutIntervalWeekly,
		AnchorDay:    5,
		MinimumCents: 2500,
	})
	if err != nil {
		t.Fatalf("ConfigureSchedule: %v", err)
	}
	if view.NextPayoutAt == nil {
		t.Fatal("expected a next payout date")
	}
	if view.NextPayoutAt.Weekday() != time.Friday {
		t.Fatalf("next payout weekday = %s, want Friday", view.NextPayoutAt.Weekday())
	}
}

func TestConfigureSchedulePersistsEnabledFlag(t *testing.T) {
	svc := newPayoutService(t, defaultPayoutFixture())

	view, err := svc.ConfigureSchedule(context.Background(), ConfigureScheduleInput{
		RestaurantID: uuid.New(),
		Interval:     enums.PayoutIntervalDaily,
		MinimumCents: 1000,
		Enabled:      false,
	})
	if err != nil {
		t.Fatalf("ConfigureSchedule: %v", err)
	}
	if view.Schedule.Enabled {
		t.Fatal("expected the schedule to be disabled")
	}
}

func TestConfigureScheduleManualHasNoNextDate(t *testing.T) {
	svc := newPayoutService(t, defaultPayoutFixture())

	view, err := svc.ConfigureSchedule(context.Background(), ConfigureScheduleInput{
		RestaurantID: uuid.New(),
		Interval:     enums.PayoutIntervalManual,
	})
	if err != nil {
		t.Fatalf("ConfigureSchedule: %v", err)
	}
	if view.NextPayoutAt != nil {
		t.Fatalf("manual schedules have no next date, got %v", view.NextPayoutAt)
	}
}

func TestTriggerManualDisbursesFullPending(t *testing.T) {
	fx := defaultPayoutFixture()
	fx.earnings.listFn = func(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(10000, 500, 0)}, nil
	}
	svc := newPayoutService(t, fx)

	record, err := svc.TriggerManual(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("TriggerManual: %v", err)
	}
	if record.AmountCents != 9500 {
		t.Fatalf("amount = %d, want 9500", record.AmountCents)
	}
	if !record.Manual {
		t.Fatal("record should be marked manual")
	}
	if record.Status != enums.PayoutStatusCompleted {
		t.Fatalf("status = %s, want completed", record.Status)
	}
	if len(fx.stripe.calls) != 1 || fx.stripe.calls[0] != "acct_test" {
		t.Fatalf("stripe calls = %v, want one call on acct_test", fx.stripe.calls)
	}
	if len(fx.notifier.notes) != 1 || fx.notifier.notes[0].kind != "completed" {
		t.Fatalf("notes = %+v, want one completed notification", fx.notifier.notes)
	}
}

func TestTriggerManualRequiresPendingEarnings(t *testing.T) {
	fx := defaultPayoutFixture()
	svc := newPayoutService(t, fx)

	_, err := svc.TriggerManual(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("code = %s, want %s", pkgerrors.As(err).Code(), pkgerrors.CodeStateConflict)
	}
	if len(fx.stripe.calls) != 0 {
		t.Fatal("stripe should not have been called")
	}
}

func TestTriggerManualEnforcesConfiguredMinimum(t *testing.T) {
	restaurantID := uuid.New()
	fx := defaultPayoutFixture()
	fx.earnings.listFn = func(ctx context.Context, id uuid.UUID) ([]models.PaymentLog, error) {
		// Nets out to 3000 pending against a 5000 minimum.
		return []models.PaymentLog{settledLog(3000, 0, 0)}, nil
	}
	fx.repo.getScheduleFn = func(ctx context.Context, id uuid.UUID) (*models.PayoutSchedule, error) {
		schedule := dueDailySchedule(restaurantID, 5000)
		return &schedule, nil
	}
	svc := newPayoutService(t, fx)

	_, err := svc.TriggerManual(context.Background(), restaurantID)
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("code = %s, want %s", pkgerrors.As(err).Code(), pkgerrors.CodeStateConflict)
	}
	if len(fx.stripe.calls) != 0 {
		t.Fatal("stripe should not have been called")
	}
	if len(fx.repo.createdRecords) != 0 {
		t.Fatal("no payout record expected below the minimum")
	}
}

func TestTriggerManualIgnoresDisabledSchedule(t *testing.T) {
	restaurantID := uuid.New()
	fx := defaultPayoutFixture()
	fx.earnings.listFn = func(ctx context.Context, id uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(10000, 500, 0)}, nil
	}
	fx.repo.getScheduleFn = func(ctx context.Context, id uuid.UUID) (*models.PayoutSchedule, error) {
		schedule := dueDailySchedule(restaurantID, 0)
		schedule.Enabled = false
		return &schedule, nil
	}
	svc := newPayoutService(t, fx)

	record, err := svc.TriggerManual(context.Background(), restaurantID)
	if err != nil {
		t.Fatalf("TriggerManual: %v", err)
	}
	if record.AmountCents != 9500 {
		t.Fatalf("amount = %d, want 9500", record.AmountCents)
	}
}

func TestTriggerManualRequiresActiveBankAccount(t *testing.T) {
	fx := defaultPayoutFixture()
	fx.earnings.listFn = func(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(10000, 500, 0)}, nil
	}
	fx.banks.hasActiveFn = func(ctx context.Context, restaurantID uuid.UUID) (bool, error) {
		return false, nil
	}
	svc := newPayoutService(t, fx)

	_, err := svc.TriggerManual(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("code = %s, want %s", pkgerrors.As(err).Code(), pkgerrors.CodeStateConflict)
	}
}

func TestTriggerManualPayoutsDisabled(t *testing.T) {
	fx := defaultPayoutFixture()
	fx.earnings.listFn = func(ctx context.Context, restaurantID uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(10000, 500, 0)}, nil
	}
	fx.merchants.getFn = func(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error) {
		return &models.MerchantAccount{
			RestaurantID:    restaurantID,
			StripeAccountID: "acct_test",
			Status:          enums.MerchantAccountStatusActive,
			PayoutsEnabled:  false,
		}, nil
	}
	svc := newPayoutService(t, fx)

	_, err := svc.TriggerManual(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("code = %s, want %s", pkgerrors.As(err).Code(), pkgerrors.CodeStateConflict)
	}
}

func dueDailySchedule(restaurantID uuid.UUID, minimum int64) models.PayoutSchedule {
	return models.PayoutSchedule{
		RestaurantID: restaurantID,
		Interval:     enums.PayoutIntervalDaily,
		MinimumCents: minimum,
		Enabled:      true,
		UpdatedAt:    time.Now().UTC().Add(-48 * time.Hour),
	}
}

func TestRunSweepDisbursesDueSchedules(t *testing.T) {
	restaurantID := uuid.New()
	fx := defaultPayoutFixture()
	fx.repo.listSchedulesFn = func(ctx context.Context) ([]models.PayoutSchedule, error) {
		return []models.PayoutSchedule{dueDailySchedule(restaurantID, 0)}, nil
	}
	fx.earnings.listFn = func(ctx context.Context, id uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(10000, 500, 0)}, nil
	}
	svc := newPayoutService(t, fx)

	result, err := svc.RunSweep(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if result.Disbursed != 1 || result.Failed != 0 {
		t.Fatalf("result = %+v, want one disbursement", result)
	}
	if len(fx.repo.createdRecords) != 1 {
		t.Fatalf("created %d records, want 1", len(fx.repo.createdRecords))
	}
	if fx.repo.createdRecords[0].Manual {
		t.Fatal("sweep records must not be manual")
	}
	if fx.repo.createdRecords[0].AmountCents != 9500 {
		t.Fatalf("amount = %d, want 9500", fx.repo.createdRecords[0].AmountCents)
	}
}

func TestRunSweepSkipsBelowMinimum(t *testing.T) {
	fx := defaultPayoutFixture()
	fx.repo.listSchedulesFn = func(ctx context.Context) ([]models.PayoutSchedule, error) {
		return []models.PayoutSchedule{dueDailySchedule(uuid.New(), 5000)}, nil
	}
	fx.earnings.listFn = func(ctx context.Context, id uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(3000, 150, 0)}, nil
	}
	svc := newPayoutService(t, fx)

	result, err := svc.RunSweep(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if result.Skipped != 1 || result.Disbursed != 0 {
		t.Fatalf("result = %+v, want one skip", result)
	}
	if len(fx.stripe.calls) != 0 {
		t.Fatal("stripe should not have been called")
	}
}

func TestRunSweepBlocksOnMissingBankAccount(t *testing.T) {
	restaurantID := uuid.New()
	fx := defaultPayoutFixture()
	fx.repo.listSchedulesFn = func(ctx context.Context) ([]models.PayoutSchedule, error) {
		return []models.PayoutSchedule{dueDailySchedule(restaurantID, 0)}, nil
	}
	fx.earnings.listFn = func(ctx context.Context, id uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(10000, 500, 0)}, nil
	}
	fx.banks.hasActiveFn = func(ctx context.Context, id uuid.UUID) (bool, error) {
		return false, nil
	}
	svc := newPayoutService(t, fx)

	result, err := svc.RunSweep(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if result.Skipped != 1 {
		t.Fatalf("result = %+v, want one skip", result)
	}
	if len(fx.notifier.notes) != 1 || fx.notifier.notes[0].kind != "blocked" {
		t.Fatalf("notes = %+v, want one blocked notification", fx.notifier.notes)
	}
	if fx.notifier.notes[0].restaurantID != restaurantID {
		t.Fatal("blocked notification targeted the wrong restaurant")
	}
}

func TestRunSweepSkipsDisabledSchedules(t *testing.T) {
	fx := defaultPayoutFixture()
	fx.repo.listSchedulesFn = func(ctx context.Context) ([]models.PayoutSchedule, error) {
		schedule := dueDailySchedule(uuid.New(), 0)
		schedule.Enabled = false
		return []models.PayoutSchedule{schedule}, nil
	}
	fx.earnings.listFn = func(ctx context.Context, id uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(10000, 500, 0)}, nil
	}
	svc := newPayoutService(t, fx)

	result, err := svc.RunSweep(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if result.Skipped != 1 || result.Disbursed != 0 {
		t.Fatalf("result = %+v, want one skip", result)
	}
	if len(fx.stripe.calls) != 0 {
		t.Fatal("stripe should not have been called")
	}
}

func TestRunSweepSkipsManualSchedules(t *testing.T) {
	fx := defaultPayoutFixture()
	fx.repo.listSchedulesFn = func(ctx context.Context) ([]models.PayoutSchedule, error) {
		return []models.PayoutSchedule{{
			RestaurantID: uuid.New(),
			Interval:     enums.PayoutIntervalManual,
			Enabled:      true,
			UpdatedAt:    time.Now().UTC().Add(-48 * time.Hour),
		}}, nil
	}
	svc := newPayoutService(t, fx)

	result, err := svc.RunSweep(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if result.Skipped != 1 || result.Disbursed != 0 {
		t.Fatalf("result = %+v, want one skip", result)
	}
}

func TestRunSweepSkipsSchedulesNotYetDue(t *testing.T) {
	fx := defaultPayoutFixture()
	fx.repo.listSchedulesFn = func(ctx context.Context) ([]models.PayoutSchedule, error) {
		// Just configured: the first daily run is tomorrow.
		return []models.PayoutSchedule{{
			RestaurantID: uuid.New(),
			Interval:     enums.PayoutIntervalDaily,
			Enabled:      true,
			UpdatedAt:    time.Now().UTC(),
		}}, nil
	}
	fx.earnings.listFn = func(ctx context.Context, id uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(10000, 500, 0)}, nil
	}
	svc := newPayoutService(t, fx)

	result, err := svc.RunSweep(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if result.Skipped != 1 || result.Disbursed != 0 {
		t.Fatalf("result = %+v, want one skip", result)
	}
}

func TestRunSweepAnchorsOnLastCompletedPayout(t *testing.T) {
	fx := defaultPayoutFixture()
	completed := time.Now().UTC().Add(-10 * time.Minute)
	fx.repo.listSchedulesFn = func(ctx context.Context) ([]models.PayoutSchedule, error) {
		return []models.PayoutSchedule{dueDailySchedule(uuid.New(), 0)}, nil
	}
	fx.repo.lastCompletedAtFn = func(ctx context.Context, id uuid.UUID) (*time.Time, error) {
		return &completed, nil
	}
	svc := newPayoutService(t, fx)

	result, err := svc.RunSweep(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	// A payout completed minutes ago pushes the next run to tomorrow.
	if result.Skipped != 1 || result.Disbursed != 0 {
		t.Fatalf("result = %+v, want one skip", result)
	}
}

func TestRunSweepIsolatesFailures(t *testing.T) {
	healthyID := uuid.New()
	brokenID := uuid.New()
	fx := defaultPayoutFixture()
	fx.repo.listSchedulesFn = func(ctx context.Context) ([]models.PayoutSchedule, error) {
		return []models.PayoutSchedule{
			dueDailySchedule(brokenID, 0),
			dueDailySchedule(healthyID, 0),
		}, nil
	}
	fx.earnings.listFn = func(ctx context.Context, id uuid.UUID) ([]models.PaymentLog, error) {
		return []models.PaymentLog{settledLog(10000, 500, 0)}, nil
	}
	fx.stripe.createFn = func(ctx context.Context, accountID string, params *stripe.PayoutParams) (*stripe.Payout, error) {
		if len(fx.stripe.calls) == 1 {
			return nil, errors.New("stripe unavailable")
		}
		return &stripe.Payout{ID: "po_ok"}, nil
	}
	svc := newPayoutService(t, fx)

	result, err := svc.RunSweep(context.Background(), time.Now().UTC())
	if err == nil {
		t.Fatal("expected the broken restaurant to surface an error")
	}
	if result.Failed != 1 || result.Disbursed != 1 {
		t.Fatalf("result = %+v, want one failure and one disbursement", result)
	}
	if len(fx.repo.failedRecordReasons) != 1 {
		t.Fatalf("failed records = %v, want one", fx.repo.failedRecordReasons)
	}
	var sawFailedNote bool
	for _, note := range fx.notifier.notes {
		if note.kind == "failed" && note.restaurantID == brokenID {
			sawFailedNote = true
		}
	}
	if !sawFailedNote {
		t.Fatalf("notes = %+v, want a failed notification for the broken restaurant", fx.notifier.notes)
	}
}

func TestHistoryRequiresRestaurantID(t *testing.T) {
	svc := newPayoutService(t, defaultPayoutFixture())
	_, err := svc.History(context.Background(), uuid.Nil, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("code = %s, want %s", pkgerrors.As(err).Code(), pkgerrors.CodeValidation)
	}
}
