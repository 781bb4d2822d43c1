package enums

import "fmt"

// InvoiceStatus describes the payment state of a finalized invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
}

// String implements fmt.Stringer.
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InvoiceStatus.
func (s InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseInvoiceStatus converts raw input into an InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}
