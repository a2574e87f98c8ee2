package enums

import "fmt"

// ReceiptType distinguishes order-generated receipts from manually entered ones.
type ReceiptType string

const (
	ReceiptTypeOrder  ReceiptType = "ORDER"
	ReceiptTypeManual ReceiptType = "MANUAL"
)

var validReceiptTypes = []ReceiptType{
	ReceiptTypeOrder,
	ReceiptTypeManual,
}

// IsValid reports whether the value is a known ReceiptType.
func (r ReceiptType) IsValid() bool {
	for _, candidate := range validReceiptTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReceiptType converts raw input into a ReceiptType.
func ParseReceiptType(value string) (ReceiptType, error) {
	for _, candidate := range validReceiptTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid receipt type %q", value)
}
