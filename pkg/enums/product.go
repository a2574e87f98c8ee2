package enums

import "fmt"

// ProductType classifies what a variant physically is.
type ProductType string

const (
	ProductTypeEsim             ProductType = "ESIM"
	ProductTypeEsimImage        ProductType = "ESIM_IMAGE"
	ProductTypeRechargeableCard ProductType = "RECHARGEABLE_CARD"
	ProductTypePhysicalCard     ProductType = "PHYSICAL_CARD"
)

var validProductTypes = []ProductType{
	ProductTypeEsim,
	ProductTypeEsimImage,
	ProductTypeRechargeableCard,
	ProductTypePhysicalCard,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductType.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}

// ProductStatus gates whether a product shows up in the catalogue.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusInactive,
	ProductStatusArchived,
}

// IsValid reports whether the value is a known ProductStatus.
func (p ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// VariantStatus gates whether a variant is orderable.
type VariantStatus string

const (
	VariantStatusActive   VariantStatus = "ACTIVE"
	VariantStatusInactive VariantStatus = "INACTIVE"
)

var validVariantStatuses = []VariantStatus{
	VariantStatusActive,
	VariantStatusInactive,
}

// IsValid reports whether the value is a known VariantStatus.
func (v VariantStatus) IsValid() bool {
	for _, candidate := range validVariantStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}
