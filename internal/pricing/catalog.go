package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// PriceEntry is one dated base price row.
type PriceEntry struct {
	Tier          enums.PriceTier
	EggTypeID     uuid.UUID
	PricePerCrate decimal.Decimal
	EffectiveDate types.Date
	IsActive      bool
}

type tierKey struct {
	tier      enums.PriceTier
	eggTypeID uuid.UUID
}

// PriceCatalog answers point-in-time base price lookups per (tier, egg type).
// It is immutable once built and safe for concurrent reads.
type PriceCatalog struct {
	series map[tierKey]*timeline[decimal.Decimal]
}

// NewPriceCatalog indexes entries. Inactive entries are accepted but never
// selected. Negative prices and repeated (tier, egg type, date) keys are
// rejected.
func NewPriceCatalog(entries []PriceEntry) (*PriceCatalog, error) {
	type entryKey struct {
		tierKey
		date types.Date
	}

	seen := make(map[entryKey]struct{}, len(entries))
	series := make(map[tierKey]*timeline[decimal.Decimal])

	for _, entry := range entries {
		if !entry.Tier.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid price tier %q", entry.Tier))
		}
		if entry.PricePerCrate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative").
				WithDetails(map[string]any{"tier": entry.Tier, "egg_type": entry.EggTypeID, "effective_date": entry.EffectiveDate})
		}

		key := tierKey{tier: entry.Tier, eggTypeID: entry.EggTypeID}
		ek := entryKey{tierKey: key, date: entry.EffectiveDate}
		if _, dup := seen[ek]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "duplicate price entry for tier, egg type and effective date").
				WithDetails(map[string]any{"tier": entry.Tier, "egg_type": entry.EggTypeID, "effective_date": entry.EffectiveDate})
		}
		seen[ek] = struct{}{}

		if !entry.IsActive {
			continue
		}
		tl, ok := series[key]
		if !ok {
			tl = &timeline[decimal.Decimal]{}
			series[key] = tl
		}
		tl.add(entry.EffectiveDate, entry.PricePerCrate)
	}

	for _, tl := range series {
		tl.seal()
	}
	return &PriceCatalog{series: series}, nil
}

// ResolveBasePrice returns the active price with the latest effective date on
// or before asOf. ok is false when nothing is configured, which is distinct
// from a configured price of zero.
func (c *PriceCatalog) ResolveBasePrice(tier enums.PriceTier, eggTypeID uuid.UUID, asOf types.Date) (decimal.Decimal, bool) {
	if c == nil {
		return decimal.Zero, false
	}
	tl, ok := c.series[tierKey{tier: tier, eggTypeID: eggTypeID}]
	if !ok {
		return decimal.Zero, false
	}
	price, _, found := tl.latestOnOrBefore(asOf)
	return price, found
}
