package enums

import "fmt"

// DraftStatus describes the lifecycle state of an invoice draft.
type DraftStatus string

const (
	DraftStatusDraft DraftStatus = "draft"
	// DraftStatusSaved is only ever written atomically with invoice creation;
	// it is never set independently.
	DraftStatusSaved DraftStatus = "saved"
)

var validDraftStatuses = []DraftStatus{
	DraftStatusDraft,
	DraftStatusSaved,
}

// String implements fmt.Stringer.
func (s DraftStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DraftStatus.
func (s DraftStatus) IsValid() bool {
	for _, candidate := range validDraftStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDraftStatus converts raw input into a DraftStatus.
func ParseDraftStatus(value string) (DraftStatus, error) {
	for _, candidate := range validDraftStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid draft status %q", value)
}
