package enums

import "fmt"

// AccountStatus describes whether an account can transact.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusArchived AccountStatus = "ARCHIVED"
)

var validAccountStatuses = []AccountStatus{
	AccountStatusActive,
	AccountStatusInactive,
	AccountStatusArchived,
}

// IsValid reports whether the value is a known AccountStatus.
func (a AccountStatus) IsValid() bool {
	for _, candidate := range validAccountStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountStatus converts raw input into an AccountStatus.
func ParseAccountStatus(value string) (AccountStatus, error) {
	for _, candidate := range validAccountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account status %q", value)
}
