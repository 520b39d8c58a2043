package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// PriceTierEntry is one dated base price for a (tier, egg type) pair.
type PriceTierEntry struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Tier          enums.PriceTier `gorm:"column:tier;size:20;not null;uniqueIndex:uq_price_tier_entries_key,priority:1"`
	EggTypeID     uuid.UUID       `gorm:"column:egg_type_id;type:uuid;not null;uniqueIndex:uq_price_tier_entries_key,priority:2"`
	EggType       *EggType        `gorm:"foreignKey:EggTypeID;constraint:OnDelete:CASCADE"`
	PricePerCrate decimal.Decimal `gorm:"column:price_per_crate;type:numeric(10,2);not null;check:chk_price_tier_entries_price,price_per_crate >= 0"`
	EffectiveDate types.Date      `gorm:"column:effective_date;type:date;not null;uniqueIndex:uq_price_tier_entries_key,priority:3"`
	IsActive      bool            `gorm:"column:is_active;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (p *PriceTierEntry) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
