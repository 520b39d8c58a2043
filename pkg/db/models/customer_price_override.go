package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// CustomerPriceOverride is a dated per-customer price for one egg type. A NULL
// price is a recorded decision to defer to the base tier price.
type CustomerPriceOverride struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:uq_customer_price_overrides_key,priority:1"`
	Customer      *WholesaleCustomer  `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	EggTypeID     uuid.UUID           `gorm:"column:egg_type_id;type:uuid;not null;uniqueIndex:uq_customer_price_overrides_key,priority:2"`
	EggType       *EggType            `gorm:"foreignKey:EggTypeID;constraint:OnDelete:CASCADE"`
	PricePerCrate decimal.NullDecimal `gorm:"column:price_per_crate;type:numeric(10,2)"`
	EffectiveDate types.Date          `gorm:"column:effective_date;type:date;not null;uniqueIndex:uq_customer_price_overrides_key,priority:3"`
	Notes         string              `gorm:"column:notes;not null;default:''"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (o *CustomerPriceOverride) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}
