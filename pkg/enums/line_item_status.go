package enums

import "fmt"

// LineItemStatus tracks the disposition of a single order line.
type LineItemStatus string

const (
	LineItemStatusNormal   LineItemStatus = "NORMAL"
	LineItemStatusFailed   LineItemStatus = "FAILED"
	LineItemStatusCanceled LineItemStatus = "CANCELED"
	LineItemStatusReturned LineItemStatus = "RETURNED"
	LineItemStatusDamaged  LineItemStatus = "DAMAGED"
)

var validLineItemStatuses = []LineItemStatus{
	LineItemStatusNormal,
	LineItemStatusFailed,
	LineItemStatusCanceled,
	LineItemStatusReturned,
	LineItemStatusDamaged,
}

// IsValid reports whether the value is a known LineItemStatus.
func (l LineItemStatus) IsValid() bool {
	for _, candidate := range validLineItemStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLineItemStatus converts raw input into a LineItemStatus.
func ParseLineItemStatus(value string) (LineItemStatus, error) {
	for _, candidate := range validLineItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line item status %q", value)
}
