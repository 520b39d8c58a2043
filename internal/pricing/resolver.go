package pricing

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// MoneyPlaces is the number of decimal places stored for prices and totals.
const MoneyPlaces = 2

// MaxQuantity is the largest crate count a sale item column holds.
const MaxQuantity = math.MaxInt32

// Exclusive upper bounds matching numeric(10,2) prices and numeric(12,2)
// totals.
var (
	PriceLimit  = decimal.New(1, 8)
	AmountLimit = decimal.New(1, 10)
)

type BasePriceSource interface {
	ResolveBasePrice(tier enums.PriceTier, eggTypeID uuid.UUID, asOf types.Date) (decimal.Decimal, bool)
}

type OverrideSource interface {
	ResolveOverride(customerID, eggTypeID uuid.UUID, asOf types.Date) OverrideResult
}

// PriceQuery is the context needed to price one line.
type PriceQuery struct {
	SaleType      enums.SaleType
	CustomerID    *uuid.UUID
	EggTypeID     uuid.UUID
	AsOf          types.Date
	ExplicitPrice decimal.NullDecimal
}

// Resolution is the unit price charged and the rule that produced it.
type Resolution struct {
	UnitPrice decimal.Decimal
	Source    enums.PriceSource
	Tier      enums.PriceTier
	Override  OverrideOutcome
}

type Resolver struct {
	base      BasePriceSource
	overrides OverrideSource
	strict    bool
}

type ResolverOption func(*Resolver)

// WithStrict makes an unconfigured price an error instead of a zero price.
func WithStrict(strict bool) ResolverOption {
	return func(r *Resolver) {
		r.strict = strict
	}
}

// NewResolver composes the base catalog and the override catalog. Either may
// be nil, in which case it never matches.
func NewResolver(base BasePriceSource, overrides OverrideSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{base: base, overrides: overrides}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveUnitPrice applies, in order: the explicit line price, the customer
// override (wholesale with a customer only), the base tier price, then zero.
func (r *Resolver) ResolveUnitPrice(q PriceQuery) (Resolution, error) {
	tier, ok := q.SaleType.PriceTier()
	if !ok {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid sale type").
			WithDetails(map[string]any{"sale_type": q.SaleType})
	}

	if q.ExplicitPrice.Valid {
		if err := ValidatePrice(q.ExplicitPrice.Decimal, "price_per_crate"); err != nil {
			return Resolution{}, err
		}
		return Resolution{UnitPrice: q.ExplicitPrice.Decimal, Source: enums.PriceSourceExplicit, Tier: tier}, nil
	}

	outcome := OverrideNotFound
	if q.SaleType == enums.SaleTypeWholesale && q.CustomerID != nil && r.overrides != nil {
		result := r.overrides.ResolveOverride(*q.CustomerID, q.EggTypeID, q.AsOf)
		if result.Outcome == OverrideFound {
			return Resolution{UnitPrice: result.Price, Source: enums.PriceSourceOverride, Tier: tier, Override: OverrideFound}, nil
		}
		outcome = result.Outcome
	}

	if r.base != nil {
		if price, found := r.base.ResolveBasePrice(tier, q.EggTypeID, q.AsOf); found {
			return Resolution{UnitPrice: price, Source: enums.PriceSourceTier, Tier: tier, Override: outcome}, nil
		}
	}

	if r.strict {
		return Resolution{}, pkgerrors.New(pkgerrors.CodePriceNotConfigured, "no price configured for egg type").
			WithDetails(map[string]any{"tier": tier, "egg_type": q.EggTypeID, "as_of": q.AsOf})
	}
	return Resolution{UnitPrice: decimal.Zero, Source: enums.PriceSourceFallback, Tier: tier, Override: outcome}, nil
}

// ValidatePrice rejects negative prices and prices finer than a cent.
func ValidatePrice(price decimal.Decimal, field string) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" cannot be negative").
			WithDetails(map[string]any{"field": field})
	}
	if !price.Equal(price.Truncate(MoneyPlaces)) {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must have at most 2 decimal places").
			WithDetails(map[string]any{"field": field})
	}
	if price.GreaterThanOrEqual(PriceLimit) {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must be less than "+PriceLimit.String()).
			WithDetails(map[string]any{"field": field})
	}
	return nil
}
