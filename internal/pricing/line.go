package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
)

// ComputeLineTotal multiplies quantity by unit price and rounds half-up to the
// cent.
func ComputeLineTotal(quantity int, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity < 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity > MaxQuantity {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity is too large")
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	total := decimal.NewFromInt(int64(quantity)).Mul(unitPrice).Round(MoneyPlaces)
	if total.GreaterThanOrEqual(AmountLimit) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "line total must be less than "+AmountLimit.String())
	}
	return total, nil
}
