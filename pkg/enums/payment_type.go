package enums

import "fmt"

// PaymentType selects how an order is settled. Only WALLET touches the
// balance ledger; CASH and BANK_TRANSFER settle out of band.
type PaymentType string

const (
	PaymentTypeWallet       PaymentType = "WALLET"
	PaymentTypeCash         PaymentType = "CASH"
	PaymentTypeBankTransfer PaymentType = "BANK_TRANSFER"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeWallet,
	PaymentTypeCash,
	PaymentTypeBankTransfer,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}
