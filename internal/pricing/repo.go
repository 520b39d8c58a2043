package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/repo"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// SnapshotQuery narrows the catalog rows needed to price one sale.
type SnapshotQuery struct {
	Tier       enums.PriceTier
	CustomerID *uuid.UUID
	EggTypeIDs []uuid.UUID
	AsOf       types.Date
}

// Snapshot holds the catalogs read in one transaction.
type Snapshot struct {
	Prices    *PriceCatalog
	Overrides *OverrideCatalog
}

// Repository loads pricing rows. Each lookup reads only rows effective on or
// before the as-of date for the requested egg types.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// LoadSnapshot reads price tiers and, when a customer is given, overrides.
// Pass the caller's transaction as tx so the snapshot matches its writes.
func (r *Repository) LoadSnapshot(ctx context.Context, tx *gorm.DB, q SnapshotQuery) (*Snapshot, error) {
	db := r.base.WithTx(tx).DB(ctx)

	snapshot := &Snapshot{}
	if len(q.EggTypeIDs) == 0 {
		snapshot.Prices = &PriceCatalog{}
		snapshot.Overrides = &OverrideCatalog{}
		return snapshot, nil
	}

	var tierRows []models.PriceTierEntry
	if err := db.
		Where("tier = ? AND egg_type_id IN ? AND effective_date <= ? AND is_active = ?", q.Tier, q.EggTypeIDs, q.AsOf, true).
		Find(&tierRows).Error; err != nil {
		return nil, err
	}

	entries := make([]PriceEntry, 0, len(tierRows))
	for _, row := range tierRows {
		entries = append(entries, PriceEntry{
			Tier:          row.Tier,
			EggTypeID:     row.EggTypeID,
			PricePerCrate: row.PricePerCrate,
			EffectiveDate: row.EffectiveDate,
			IsActive:      row.IsActive,
		})
	}
	prices, err := NewPriceCatalog(entries)
	if err != nil {
		return nil, err
	}
	snapshot.Prices = prices

	var overrideRows []models.CustomerPriceOverride
	if q.CustomerID != nil {
		if err := db.
			Where("customer_id = ? AND egg_type_id IN ? AND effective_date <= ?", *q.CustomerID, q.EggTypeIDs, q.AsOf).
			Find(&overrideRows).Error; err != nil {
			return nil, err
		}
	}

	overrideEntries := make([]OverrideEntry, 0, len(overrideRows))
	for _, row := range overrideRows {
		overrideEntries = append(overrideEntries, OverrideEntry{
			CustomerID:    row.CustomerID,
			EggTypeID:     row.EggTypeID,
			PricePerCrate: row.PricePerCrate,
			EffectiveDate: row.EffectiveDate,
		})
	}
	overrides, err := NewOverrideCatalog(overrideEntries)
	if err != nil {
		return nil, err
	}
	snapshot.Overrides = overrides

	return snapshot, nil
}

// EggTypeExists reports whether the egg type row exists, active or not.
func (r *Repository) EggTypeExists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := r.base.WithTx(tx).DB(ctx).Model(&models.EggType{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CustomerExists reports whether the wholesale customer row exists.
func (r *Repository) CustomerExists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := r.base.WithTx(tx).DB(ctx).Model(&models.WholesaleCustomer{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
