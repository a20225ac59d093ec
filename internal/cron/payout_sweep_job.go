package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mealora/mealora-backend/internal/payouts"
	"github.com/mealora/mealora-backend/pkg/logger"
)

type payoutSweeper interface {
	RunSweep(ctx context.Context, now time.Time) (*payouts.SweepResult, error)
}

// PayoutSweepJob disburses due restaurant earnings on each cron cycle.
type PayoutSweepJob struct {
	sweeper payoutSweeper
	logg    *logger.Logger
}

// NewPayoutSweepJob builds the payout sweep job.
func NewPayoutSweepJob(sweeper payoutSweeper, logg *logger.Logger) (*PayoutSweepJob, error) {
	if sweeper == nil {
		return nil, errors.New("payout service required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &PayoutSweepJob{sweeper: sweeper, logg: logg}, nil
}

// Name implements Job.
func (j *PayoutSweepJob) Name() string { return "payout_sweep" }

// Run implements Job. Per-restaurant failures are aggregated by the
// sweep itself; the partial result is still logged.
func (j *PayoutSweepJob) Run(ctx context.Context) error {
	result, err := j.sweeper.RunSweep(ctx, time.Now().UTC())
	if result != nil {
		resultCtx := j.logg.WithFields(ctx, map[string]any{
			"examined":  result.Examined,
			"disbursed": result.Disbursed,
			"skipped":   result.Skipped,
			"failed":    result.Failed,
		})
		j.logg.Info(resultCtx, "payout sweep finished")
	}
	if err != nil {
		return fmt.Errorf("payout sweep: %w", err)
	}
	return nil
}
