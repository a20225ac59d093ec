package enums

import "fmt"

// PayoutInterval is the cadence a restaurant's earnings are disbursed on.
type PayoutInterval string

const (
	PayoutIntervalDaily   PayoutInterval = "daily"
	PayoutIntervalWeekly  PayoutInterval = "weekly"
	PayoutIntervalMonthly PayoutInterval = "monthly"
	PayoutIntervalManual  PayoutInterval = "manual"
)

var validPayoutIntervals = []PayoutInterval{
	PayoutIntervalDaily,
	PayoutIntervalWeekly,
	PayoutIntervalMonthly,
	PayoutIntervalManual,
}

// String implements fmt.Stringer.
func (p PayoutInterval) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PayoutInterval.
func (p PayoutInterval) IsValid() bool {
	for _, candidate := range validPayoutIntervals {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePayoutInterval converts raw input into a PayoutInterval.
func ParsePayoutInterval(value string) (PayoutInterval, error) {
	for _, candidate := range validPayoutIntervals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout interval %q", value)
}
