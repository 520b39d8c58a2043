package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// OverrideEntry is one dated customer override row. An invalid PricePerCrate
// records an explicit decision to use the base price.
type OverrideEntry struct {
	CustomerID    uuid.UUID
	EggTypeID     uuid.UUID
	PricePerCrate decimal.NullDecimal
	EffectiveDate types.Date
}

type OverrideOutcome int

const (
	// OverrideNotFound means no override row applies on the date.
	OverrideNotFound OverrideOutcome = iota
	// OverrideFound means the latest applicable row carries a price.
	OverrideFound
	// OverrideDeferred means the latest applicable row has no price and the
	// base tier price must be used.
	OverrideDeferred
)

func (o OverrideOutcome) String() string {
	switch o {
	case OverrideFound:
		return "found"
	case OverrideDeferred:
		return "deferred"
	default:
		return "not_found"
	}
}

type OverrideResult struct {
	Outcome OverrideOutcome
	Price   decimal.Decimal
}

type overrideKey struct {
	customerID uuid.UUID
	eggTypeID  uuid.UUID
}

// OverrideCatalog answers point-in-time override lookups per (customer, egg
// type). Immutable once built.
type OverrideCatalog struct {
	series map[overrideKey]*timeline[decimal.NullDecimal]
}

func NewOverrideCatalog(entries []OverrideEntry) (*OverrideCatalog, error) {
	type entryKey struct {
		overrideKey
		date types.Date
	}

	seen := make(map[entryKey]struct{}, len(entries))
	series := make(map[overrideKey]*timeline[decimal.NullDecimal])

	for _, entry := range entries {
		if entry.PricePerCrate.Valid && entry.PricePerCrate.Decimal.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "override price cannot be negative").
				WithDetails(map[string]any{"customer": entry.CustomerID, "egg_type": entry.EggTypeID, "effective_date": entry.EffectiveDate})
		}

		key := overrideKey{customerID: entry.CustomerID, eggTypeID: entry.EggTypeID}
		ek := entryKey{overrideKey: key, date: entry.EffectiveDate}
		if _, dup := seen[ek]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "duplicate override for customer, egg type and effective date").
				WithDetails(map[string]any{"customer": entry.CustomerID, "egg_type": entry.EggTypeID, "effective_date": entry.EffectiveDate})
		}
		seen[ek] = struct{}{}

		tl, ok := series[key]
		if !ok {
			tl = &timeline[decimal.NullDecimal]{}
			series[key] = tl
		}
		tl.add(entry.EffectiveDate, entry.PricePerCrate)
	}

	for _, tl := range series {
		tl.seal()
	}
	return &OverrideCatalog{series: series}, nil
}

// ResolveOverride picks the override row with the latest effective date on or
// before asOf. A null-price row wins over older priced rows and reports
// OverrideDeferred.
func (c *OverrideCatalog) ResolveOverride(customerID, eggTypeID uuid.UUID, asOf types.Date) OverrideResult {
	if c == nil {
		return OverrideResult{Outcome: OverrideNotFound}
	}
	tl, ok := c.series[overrideKey{customerID: customerID, eggTypeID: eggTypeID}]
	if !ok {
		return OverrideResult{Outcome: OverrideNotFound}
	}
	price, _, found := tl.latestOnOrBefore(asOf)
	switch {
	case !found:
		return OverrideResult{Outcome: OverrideNotFound}
	case !price.Valid:
		return OverrideResult{Outcome: OverrideDeferred}
	default:
		return OverrideResult{Outcome: OverrideFound, Price: price.Decimal}
	}
}
