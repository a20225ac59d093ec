package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PayoutMetrics tracks sweep outcomes and disbursed volume.
type PayoutMetrics struct {
	disbursedCents *prometheus.CounterVec
	skipped        *prometheus.CounterVec
	failures       prometheus.Counter
}

// NewPayoutMetrics registers payout metrics on the provided registerer.
func NewPayoutMetrics(reg prometheus.Registerer) *PayoutMetrics {
	if reg == nil {
		return &PayoutMetrics{}
	}
	disbursed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_disbursed_cents_total",
		Help: "Total cents disbursed to restaurants.",
	}, []string{"interval"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_skipped_total",
		Help: "Restaurants skipped during a sweep, by reason.",
	}, []string{"reason"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payout_failures_total",
		Help: "Payout attempts that failed at the processor.",
	})
	reg.MustRegister(disbursed, skipped, failures)
	return &PayoutMetrics{
		disbursedCents: disbursed,
		skipped:        skipped,
		failures:       failures,
	}
}

// AddDisbursed records cents paid out under the given schedule interval.
func (p *PayoutMetrics) AddDisbursed(interval string, cents int64) {
	if p == nil || p.disbursedCents == nil || cents <= 0 {
		return
	}
	p.disbursedCents.WithLabelValues(normalizeLabel(interval)).Add(float64(cents))
}

// IncSkipped counts a restaurant skipped during a sweep.
func (p *PayoutMetrics) IncSkipped(reason string) {
	if p == nil || p.skipped == nil {
		return
	}
	p.skipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncFailure counts a payout that failed at the processor.
func (p *PayoutMetrics) IncFailure() {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.Inc()
}
