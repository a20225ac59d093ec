package enums

import "fmt"

// MerchantAccountStatus is the locally derived state of a connected merchant
// account. The processor's capability flags stay authoritative; this enum only
// summarizes them for dashboards and gating.
type MerchantAccountStatus string

const (
	MerchantAccountStatusCreated    MerchantAccountStatus = "created"
	MerchantAccountStatusOnboarding MerchantAccountStatus = "onboarding"
	MerchantAccountStatusActive     MerchantAccountStatus = "active"
	MerchantAccountStatusRestricted MerchantAccountStatus = "restricted"
)

var validMerchantAccountStatuses = []MerchantAccountStatus{
	MerchantAccountStatusCreated,
	MerchantAccountStatusOnboarding,
	MerchantAccountStatusActive,
	MerchantAccountStatusRestricted,
}

// String implements fmt.Stringer.
func (m MerchantAccountStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MerchantAccountStatus.
func (m MerchantAccountStatus) IsValid() bool {
	for _, candidate := range validMerchantAccountStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMerchantAccountStatus converts raw input into a MerchantAccountStatus.
func ParseMerchantAccountStatus(value string) (MerchantAccountStatus, error) {
	for _, candidate := range validMerchantAccountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid merchant account status %q", value)
}
