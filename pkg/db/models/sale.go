package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
)

// Sale is a retail or wholesale sale. TotalAmount is always the sum of the
// persisted items' line totals.
type Sale struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	SaleType     enums.SaleType     `gorm:"column:sale_type;size:20;not null;index:idx_sales_sale_type"`
	CustomerID   *uuid.UUID         `gorm:"column:customer_id;type:uuid;index:idx_sales_customer_id"`
	Customer     *WholesaleCustomer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
	SaleDatetime time.Time          `gorm:"column:sale_datetime;not null;index:idx_sales_sale_datetime"`
	TotalAmount  decimal.Decimal    `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	Notes        string             `gorm:"column:notes;not null;default:''"`
	Items        []SaleItem         `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// SaleItem is one persisted line of a sale. UnitPrice and PriceSource record
// how the line was priced; PricePerCrate is the caller's explicit price, if any.
type SaleItem struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SaleID        uuid.UUID           `gorm:"column:sale_id;type:uuid;not null;index:idx_sale_items_sale_id,priority:1"`
	LineNo        int                 `gorm:"column:line_no;not null;default:0;index:idx_sale_items_sale_id,priority:2"`
	EggTypeID     uuid.UUID           `gorm:"column:egg_type_id;type:uuid;not null;index:idx_sale_items_egg_type_id"`
	EggType       *EggType            `gorm:"foreignKey:EggTypeID;constraint:OnDelete:RESTRICT"`
	Quantity      int                 `gorm:"column:quantity;not null;check:chk_sale_items_quantity,quantity > 0"`
	PricePerCrate decimal.NullDecimal `gorm:"column:price_per_crate;type:numeric(10,2)"`
	UnitPrice     decimal.Decimal     `gorm:"column:unit_price;type:numeric(10,2);not null"`
	PriceSource   enums.PriceSource   `gorm:"column:price_source;size:20;not null"`
	LineTotal     decimal.Decimal     `gorm:"column:line_total;type:numeric(12,2);not null"`
}

func (i *SaleItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
