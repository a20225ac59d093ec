package enums

import "fmt"

// ActorType is the closed set of marketplace participants a caller can act as.
type ActorType string

const (
	ActorTypeCustomer   ActorType = "customer"
	ActorTypeRestaurant ActorType = "restaurant"
	ActorTypeCourier    ActorType = "courier"
)

var validActorTypes = []ActorType{
	ActorTypeCustomer,
	ActorTypeRestaurant,
	ActorTypeCourier,
}

// String implements fmt.Stringer.
func (a ActorType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorType.
func (a ActorType) IsValid() bool {
	for _, candidate := range validActorTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActorType converts raw input into an ActorType.
func ParseActorType(value string) (ActorType, error) {
	for _, candidate := range validActorTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor type %q", value)
}
