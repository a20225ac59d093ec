package enums

import "fmt"

// PayoutStatus tracks the lifecycle of a payout record.
type PayoutStatus string

const (
	PayoutStatusScheduled PayoutStatus = "scheduled"
	PayoutStatusCompleted PayoutStatus = "completed"
	PayoutStatusFailed    PayoutStatus = "failed"
)

var validPayoutStatuses = []PayoutStatus{
	PayoutStatusScheduled,
	PayoutStatusCompleted,
	PayoutStatusFailed,
}

// payoutStatusTransitions centralizes legal payout transitions. Completed
// payouts are immutable.
var payoutStatusTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutStatusScheduled: {PayoutStatusCompleted, PayoutStatusFailed},
	PayoutStatusCompleted: {},
	PayoutStatusFailed:    {},
}

// String implements fmt.Stringer.
func (p PayoutStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PayoutStatus.
func (p PayoutStatus) IsValid() bool {
	for _, candidate := range validPayoutStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from the current status to next is legal.
func (p PayoutStatus) CanTransitionTo(next PayoutStatus) bool {
	for _, candidate := range payoutStatusTransitions[p] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParsePayoutStatus converts raw input into a PayoutStatus.
func ParsePayoutStatus(value string) (PayoutStatus, error) {
	for _, candidate := range validPayoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout status %q", value)
}
