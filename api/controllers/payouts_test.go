package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/api/middleware"
	"github.com/mealora/mealora-backend/internal/payouts"
	pkgauth "github.com/mealora/mealora-backend/pkg/auth"
	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
)

type testPayoutsService struct {
	pendingFn   func(ctx context.Context, restaurantID uuid.UUID) (int64, error)
	configureFn func(ctx context.Context, input payouts.ConfigureScheduleInput) (*payouts.ScheduleView, error)
	scheduleFn  func(ctx context.Context, restaurantID uuid.UUID) (*payouts.ScheduleView, error)
	triggerFn   func(ctx context.Context, restaurantID uuid.UUID) (*models.PayoutRecord, error)
	historyFn   func(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.PayoutRecord, error)
}

func (s *testPayoutsService) PendingEarnings(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	if s.pendingFn != nil {
		return s.pendingFn(ctx, restaurantID)
	}
	return 0, nil
}

func (s *testPayoutsService) ConfigureSchedule(ctx context.Context, input payouts.ConfigureScheduleInput) (*payouts.ScheduleView, error) {
	if s.configureFn != nil {
		return s.configureFn(ctx, input)
	}
	return nil, nil
}

func (s *testPayoutsService) GetSchedule(ctx context.Context, restaurantID uuid.UUID) (*payouts.ScheduleView, error) {
	if s.scheduleFn != nil {
		return s.scheduleFn(ctx, restaurantID)
	}
	return nil, nil
}

func (s *testPayoutsService) TriggerManual(ctx context.Context, restaurantID uuid.UUID) (*models.PayoutRecord, error) {
	if s.triggerFn != nil {
		return s.triggerFn(ctx, restaurantID)
	}
	return nil, nil
}

func (s *testPayoutsService) RunSweep(ctx context.Context, now time.Time) (*payouts.SweepResult, error) {
	return nil, nil
}

func (s *testPayoutsService) History(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.PayoutRecord, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, restaurantID, limit)
	}
	return nil, nil
}

func withRestaurantCaller(req *http.Request, restaurantID uuid.UUID) *http.Request {
	caller := pkgauth.Caller{
		UserID:       uuid.New(),
		Actor:        enums.ActorTypeRestaurant,
		RestaurantID: &restaurantID,
	}
	return req.WithContext(middleware.WithCaller(req.Context(), caller))
}

func TestGetPendingEarnings(t *testing.T) {
	restaurantID := uuid.New()
	svc := &testPayoutsService{
		pendingFn: func(ctx context.Context, rid uuid.UUID) (int64, error) {
			if rid != restaurantID {
				t.Fatalf("unexpected restaurant %s", rid)
			}
			return 7860, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurant/payouts/earnings", nil)
	req = withRestaurantCaller(req, restaurantID)
	resp := httptest.NewRecorder()
	GetPendingEarnings(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d (%s)", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["pending_cents"] != 7860 {
		t.Fatalf("unexpected pending %d", envelope.Data["pending_cents"])
	}
}

func TestGetPendingEarningsMissingRestaurantContext(t *testing.T) {
	svc := &testPayoutsService{
		pendingFn: func(ctx context.Context, rid uuid.UUID) (int64, error) {
			t.Fatal("service should not be called")
			return 0, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurant/payouts/earnings", nil)
	resp := httptest.NewRecorder()
	GetPendingEarnings(svc, testLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestConfigurePayoutSchedule(t *testing.T) {
	restaurantID := uuid.New()
	next := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)
	svc := &testPayoutsService{
		configureFn: func(ctx context.Context, input payouts.ConfigureScheduleInput) (*payouts.ScheduleView, error) {
			if input.RestaurantID != restaurantID {
				t.Fatalf("unexpected restaurant %s", input.RestaurantID)
			}
			if input.Interval != enums.PayoutIntervalWeekly || input.AnchorDay != 5 {
				t.Fatalf("unexpected cadence %s/%d", input.Interval, input.AnchorDay)
			}
			if !input.Enabled {
				t.Fatal("enabled must default to true when the body omits it")
			}
			return &payouts.ScheduleView{
				Schedule: &models.PayoutSchedule{
					RestaurantID: restaurantID,
					Interval:     input.Interval,
					AnchorDay:    input.AnchorDay,
					MinimumCents: input.MinimumCents,
					Enabled:      input.Enabled,
				},
				NextPayoutAt: &next,
			}, nil
		},
	}

	body := strings.NewReader(`{"interval":"weekly","anchor_day":5,"minimum_cents":1000}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/restaurant/payouts/schedule", body)
	req = withRestaurantCaller(req, restaurantID)
	resp := httptest.NewRecorder()
	ConfigurePayoutSchedule(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d (%s)", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data payoutScheduleResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Interval != "weekly" || envelope.Data.NextPayoutAt == nil {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
	if !envelope.Data.Enabled {
		t.Fatal("enabled flag missing from response")
	}
}

func TestConfigurePayoutScheduleDisablesSweep(t *testing.T) {
	restaurantID := uuid.New()
	svc := &testPayoutsService{
		configureFn: func(ctx context.Context, input payouts.ConfigureScheduleInput) (*payouts.ScheduleView, error) {
			if input.Enabled {
				t.Fatal("enabled=false not forwarded")
			}
			return &payouts.ScheduleView{
				Schedule: &models.PayoutSchedule{
					RestaurantID: restaurantID,
					Interval:     input.Interval,
					AnchorDay:    input.AnchorDay,
					Enabled:      false,
				},
			}, nil
		},
	}

	body := strings.NewReader(`{"interval":"weekly","anchor_day":1,"enabled":false}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/restaurant/payouts/schedule", body)
	req = withRestaurantCaller(req, restaurantID)
	resp := httptest.NewRecorder()
	ConfigurePayoutSchedule(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d (%s)", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data payoutScheduleResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Enabled {
		t.Fatal("disabled schedule reported as enabled")
	}
}

func TestConfigurePayoutScheduleRejectsUnknownInterval(t *testing.T) {
	restaurantID := uuid.New()
	svc := &testPayoutsService{
		configureFn: func(ctx context.Context, input payouts.ConfigureScheduleInput) (*payouts.ScheduleView, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	body := strings.NewReader(`{"interval":"hourly"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/restaurant/payouts/schedule", body)
	req = withRestaurantCaller(req, restaurantID)
	resp := httptest.NewRecorder()
	ConfigurePayoutSchedule(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestTriggerPayout(t *testing.T) {
	restaurantID := uuid.New()
	svc := &testPayoutsService{
		triggerFn: func(ctx context.Context, rid uuid.UUID) (*models.PayoutRecord, error) {
			return &models.PayoutRecord{
				ID:           uuid.New(),
				RestaurantID: rid,
				AmountCents:  9500,
				Currency:     "usd",
				Status:       enums.PayoutStatusCompleted,
				Manual:       true,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/restaurant/payouts/trigger", nil)
	req = withRestaurantCaller(req, restaurantID)
	resp := httptest.NewRecorder()
	TriggerPayout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d (%s)", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data payoutRecordResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AmountCents != 9500 || !envelope.Data.Manual {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestPayoutHistoryLimit(t *testing.T) {
	restaurantID := uuid.New()
	var gotLimit int
	svc := &testPayoutsService{
		historyFn: func(ctx context.Context, rid uuid.UUID, limit int) ([]models.PayoutRecord, error) {
			gotLimit = limit
			return []models.PayoutRecord{{RestaurantID: rid, AmountCents: 3000}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurant/payouts/history?limit=10", nil)
	req = withRestaurantCaller(req, restaurantID)
	resp := httptest.NewRecorder()
	PayoutHistory(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d (%s)", resp.Code, resp.Body.String())
	}
	if gotLimit != 10 {
		t.Fatalf("limit not forwarded: %d", gotLimit)
	}
}

func TestPayoutHistoryRejectsOutOfRangeLimit(t *testing.T) {
	restaurantID := uuid.New()
	svc := &testPayoutsService{
		historyFn: func(ctx context.Context, rid uuid.UUID, limit int) ([]models.PayoutRecord, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurant/payouts/history?limit=5000", nil)
	req = withRestaurantCaller(req, restaurantID)
	resp := httptest.NewRecorder()
	PayoutHistory(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
