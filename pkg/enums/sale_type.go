package enums

import "fmt"

// SaleType distinguishes walk-in retail sales from wholesale sales to a
// registered customer.
type SaleType string

const (
	SaleTypeRetail    SaleType = "retail"
	SaleTypeWholesale SaleType = "wholesale"
)

var validSaleTypes = []SaleType{
	SaleTypeRetail,
	SaleTypeWholesale,
}

// String implements fmt.Stringer.
func (s SaleType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleType.
func (s SaleType) IsValid() bool {
	for _, candidate := range validSaleTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// PriceTier maps a sale type to the base price tier it is charged from.
func (s SaleType) PriceTier() (PriceTier, bool) {
	switch s {
	case SaleTypeRetail:
		return PriceTierRetail, true
	case SaleTypeWholesale:
		return PriceTierWholesaleBase, true
	}
	return "", false
}

// ParseSaleType converts raw input into a SaleType.
func ParseSaleType(value string) (SaleType, error) {
	for _, candidate := range validSaleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale type %q", value)
}
