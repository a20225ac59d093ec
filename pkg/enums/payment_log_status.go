package enums

import "fmt"

// PaymentLogStatus tracks the processor-side state of a payment authorization.
type PaymentLogStatus string

const (
	PaymentLogStatusCreated           PaymentLogStatus = "created"
	PaymentLogStatusSucceeded         PaymentLogStatus = "succeeded"
	PaymentLogStatusFailed            PaymentLogStatus = "failed"
	PaymentLogStatusRefunded          PaymentLogStatus = "refunded"
	PaymentLogStatusPartiallyRefunded PaymentLogStatus = "partially_refunded"
)

var validPaymentLogStatuses = []PaymentLogStatus{
	PaymentLogStatusCreated,
	PaymentLogStatusSucceeded,
	PaymentLogStatusFailed,
	PaymentLogStatusRefunded,
	PaymentLogStatusPartiallyRefunded,
}

// String implements fmt.Stringer.
func (p PaymentLogStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentLogStatus.
func (p PaymentLogStatus) IsValid() bool {
	for _, candidate := range validPaymentLogStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentLogStatus converts raw input into a PaymentLogStatus.
func ParsePaymentLogStatus(value string) (PaymentLogStatus, error) {
	for _, candidate := range validPaymentLogStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment log status %q", value)
}
