package enums

import "fmt"

// PriceTier is the pricing bucket a base price belongs to.
type PriceTier string

const (
	PriceTierRetail        PriceTier = "retail"
	PriceTierWholesaleBase PriceTier = "wholesale_base"
)

var validPriceTiers = []PriceTier{
	PriceTierRetail,
	PriceTierWholesaleBase,
}

// String implements fmt.Stringer.
func (p PriceTier) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceTier.
func (p PriceTier) IsValid() bool {
	for _, candidate := range validPriceTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceTier converts raw input into a PriceTier.
func ParsePriceTier(value string) (PriceTier, error) {
	for _, candidate := range validPriceTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price tier %q", value)
}
