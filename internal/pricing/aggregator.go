package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

const msgNoPositiveQuantity = "at least one item must have a positive quantity"

type SaleHeader struct {
	SaleType     enums.SaleType
	CustomerID   *uuid.UUID
	SaleDatetime time.Time
}

type LineInput struct {
	EggTypeID     uuid.UUID
	Quantity      int
	PricePerCrate decimal.NullDecimal

	// 1-based position in the request, zero until validated
	pos int
}

// ComputedLine is a retained line with its resolved price and total.
type ComputedLine struct {
	EggTypeID     uuid.UUID
	Quantity      int
	PricePerCrate decimal.NullDecimal
	UnitPrice     decimal.Decimal
	Source        enums.PriceSource
	Tier          enums.PriceTier
	LineTotal     decimal.Decimal
}

type ComputedSale struct {
	SaleType     enums.SaleType
	CustomerID   *uuid.UUID
	SaleDatetime time.Time
	AsOf         types.Date
	Lines        []ComputedLine
	TotalAmount  decimal.Decimal
}

// Aggregator prices every retained line of a sale and sums the totals. It does
// no I/O; the resolver it holds must already reflect one catalog snapshot.
type Aggregator struct {
	resolver *Resolver
	loc      *time.Location
}

func NewAggregator(resolver *Resolver, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{resolver: resolver, loc: loc}
}

// AsOf is the calendar day of t in the business timezone.
func (a *Aggregator) AsOf(t time.Time) types.Date {
	return types.DateIn(t, a.loc)
}

// ComputeSale validates the sale, drops zero-quantity lines and prices the
// rest. Any validation failure is returned before pricing starts.
func (a *Aggregator) ComputeSale(header SaleHeader, lines []LineInput) (*ComputedSale, error) {
	retained, err := ValidateSale(header, lines)
	if err != nil {
		return nil, err
	}

	asOf := a.AsOf(header.SaleDatetime)
	computed := &ComputedSale{
		SaleType:     header.SaleType,
		CustomerID:   header.CustomerID,
		SaleDatetime: header.SaleDatetime,
		AsOf:         asOf,
		Lines:        make([]ComputedLine, 0, len(retained)),
		TotalAmount:  decimal.Zero,
	}

	for _, line := range retained {
		res, err := a.resolver.ResolveUnitPrice(PriceQuery{
			SaleType:      header.SaleType,
			CustomerID:    header.CustomerID,
			EggTypeID:     line.EggTypeID,
			AsOf:          asOf,
			ExplicitPrice: line.PricePerCrate,
		})
		if err != nil {
			return nil, err
		}
		total, err := ComputeLineTotal(line.Quantity, res.UnitPrice)
		if err != nil {
			return nil, lineError(line.pos-1, "line_total", pkgerrors.As(err).Message())
		}
		computed.Lines = append(computed.Lines, ComputedLine{
			EggTypeID:     line.EggTypeID,
			Quantity:      line.Quantity,
			PricePerCrate: line.PricePerCrate,
			UnitPrice:     res.UnitPrice,
			Source:        res.Source,
			Tier:          res.Tier,
			LineTotal:     total,
		})
		computed.TotalAmount = computed.TotalAmount.Add(total)
		if computed.TotalAmount.GreaterThanOrEqual(AmountLimit) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_amount must be less than "+AmountLimit.String()).
				WithDetails(map[string]any{"field": "total_amount"})
		}
	}

	return computed, nil
}

// ValidateHeader enforces the sale type and customer pairing.
func ValidateHeader(header SaleHeader) error {
	if !header.SaleType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid sale type").
			WithDetails(map[string]any{"field": "sale_type"})
	}
	if header.SaleType == enums.SaleTypeWholesale && header.CustomerID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "wholesale sales require a customer").
			WithDetails(map[string]any{"field": "customer"})
	}
	if header.SaleType == enums.SaleTypeRetail && header.CustomerID != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "retail sales must not have a customer").
			WithDetails(map[string]any{"field": "customer"})
	}
	if header.SaleDatetime.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale_datetime is required").
			WithDetails(map[string]any{"field": "sale_datetime"})
	}
	return nil
}

// ValidateSale runs every input check without touching a catalog and returns
// the lines that will be persisted.
func ValidateSale(header SaleHeader, lines []LineInput) ([]LineInput, error) {
	if err := ValidateHeader(header); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a sale must have at least one item").
			WithDetails(map[string]any{"field": "items"})
	}

	retained := make([]LineInput, 0, len(lines))
	for i, line := range lines {
		if line.EggTypeID == uuid.Nil {
			return nil, lineError(i, "egg_type", "egg_type is required")
		}
		if line.Quantity < 0 {
			return nil, lineError(i, "quantity", "quantity cannot be negative")
		}
		if line.Quantity > MaxQuantity {
			return nil, lineError(i, "quantity", fmt.Sprintf("quantity must be at most %d", MaxQuantity))
		}
		if line.PricePerCrate.Valid {
			if err := ValidatePrice(line.PricePerCrate.Decimal, "price_per_crate"); err != nil {
				return nil, lineError(i, "price_per_crate", pkgerrors.As(err).Message())
			}
		}
		if line.Quantity == 0 {
			continue
		}
		if line.pos == 0 {
			line.pos = i + 1
		}
		retained = append(retained, line)
	}

	if len(retained) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgNoPositiveQuantity).
			WithDetails(map[string]any{"field": "items"})
	}
	return retained, nil
}

func lineError(index int, field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": fmt.Sprintf("items[%d].%s", index, field)})
}
