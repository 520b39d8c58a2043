package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	"github.com/angelmondragon/eggtrade-backend/pkg/metrics"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type snapshotLoader interface {
	LoadSnapshot(ctx context.Context, tx *gorm.DB, q SnapshotQuery) (*Snapshot, error)
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Loader   snapshotLoader
	Location *time.Location
	Strict   bool
	Metrics  *metrics.PricingMetrics
	Logger   *logger.Logger
}

// Engine loads one catalog snapshot per computation and runs the pure pricing
// components against it.
type Engine struct {
	loader  snapshotLoader
	loc     *time.Location
	strict  bool
	metrics *metrics.PricingMetrics
	logg    *logger.Logger
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Loader == nil {
		return nil, fmt.Errorf("pricing snapshot loader required")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		loader:  cfg.Loader,
		loc:     loc,
		strict:  cfg.Strict,
		metrics: cfg.Metrics,
		logg:    cfg.Logger,
	}, nil
}

// Location is the business timezone used for as-of dates.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// ComputeSale validates the input, loads the catalog through tx and prices the
// sale. Validation errors are returned before any query runs.
func (e *Engine) ComputeSale(ctx context.Context, tx *gorm.DB, header SaleHeader, lines []LineInput) (*ComputedSale, error) {
	retained, err := ValidateSale(header, lines)
	if err != nil {
		return nil, err
	}

	tier, _ := header.SaleType.PriceTier()
	asOf := types.DateIn(header.SaleDatetime, e.loc)
	snapshot, err := e.loader.LoadSnapshot(ctx, tx, SnapshotQuery{
		Tier:       tier,
		CustomerID: overrideCustomer(header.SaleType, header.CustomerID),
		EggTypeIDs: uniqueEggTypes(retained),
		AsOf:       asOf,
	})
	if err != nil {
		return nil, wrapLoadErr(err)
	}

	agg := NewAggregator(NewResolver(snapshot.Prices, snapshot.Overrides, WithStrict(e.strict)), e.loc)
	computed, err := agg.ComputeSale(header, retained)
	if err != nil {
		return nil, err
	}

	for _, line := range computed.Lines {
		e.record(ctx, line.Source, line.Tier, line.EggTypeID, asOf)
	}
	return computed, nil
}

// ResolveUnitPrice prices a single egg type without creating a sale.
func (e *Engine) ResolveUnitPrice(ctx context.Context, tx *gorm.DB, q PriceQuery) (Resolution, error) {
	tier, ok := q.SaleType.PriceTier()
	if !ok {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid sale type").
			WithDetails(map[string]any{"field": "sale_type"})
	}

	snapshot := &Snapshot{}
	if !q.ExplicitPrice.Valid {
		loaded, err := e.loader.LoadSnapshot(ctx, tx, SnapshotQuery{
			Tier:       tier,
			CustomerID: overrideCustomer(q.SaleType, q.CustomerID),
			EggTypeIDs: []uuid.UUID{q.EggTypeID},
			AsOf:       q.AsOf,
		})
		if err != nil {
			return Resolution{}, wrapLoadErr(err)
		}
		snapshot = loaded
	}

	res, err := NewResolver(snapshot.Prices, snapshot.Overrides, WithStrict(e.strict)).ResolveUnitPrice(q)
	if err != nil {
		return Resolution{}, err
	}
	e.record(ctx, res.Source, res.Tier, q.EggTypeID, q.AsOf)
	return res, nil
}

func (e *Engine) record(ctx context.Context, source enums.PriceSource, tier enums.PriceTier, eggTypeID uuid.UUID, asOf types.Date) {
	e.metrics.IncResolution(source.String())
	if source != enums.PriceSourceFallback {
		return
	}
	e.metrics.IncFallback(tier.String())
	if e.logg != nil {
		ctx = e.logg.WithFields(ctx, map[string]any{
			"tier":     tier,
			"egg_type": eggTypeID.String(),
			"as_of":    asOf.String(),
		})
		e.logg.Warn(ctx, "pricing.unconfigured_price_zero")
	}
}

func overrideCustomer(saleType enums.SaleType, customerID *uuid.UUID) *uuid.UUID {
	if saleType != enums.SaleTypeWholesale {
		return nil
	}
	return customerID
}

func uniqueEggTypes(lines []LineInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.PricePerCrate.Valid {
			continue
		}
		if _, ok := seen[line.EggTypeID]; ok {
			continue
		}
		seen[line.EggTypeID] = struct{}{}
		ids = append(ids, line.EggTypeID)
	}
	return ids
}

func wrapLoadErr(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing catalog")
}
