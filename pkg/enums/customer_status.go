package enums

import "fmt"

// CustomerStatus marks whether a customer account is usable.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

var validCustomerStatuses = []CustomerStatus{
	CustomerStatusActive,
	CustomerStatusInactive,
}

// String implements fmt.Stringer.
func (s CustomerStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CustomerStatus.
func (s CustomerStatus) IsValid() bool {
	for _, candidate := range validCustomerStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCustomerStatus converts raw input into a CustomerStatus.
func ParseCustomerStatus(value string) (CustomerStatus, error) {
	for _, candidate := range validCustomerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid customer status %q", value)
}
