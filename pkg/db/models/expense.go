package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type ExpenseCategory struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;size:100;not null;uniqueIndex:uq_expense_categories_name"`
	Description  string    `gorm:"column:description;not null;default:''"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *ExpenseCategory) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Expense is a business cost, optionally recurring.
type Expense struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	Date              types.Date               `gorm:"column:date;type:date;not null;index:idx_expenses_date;uniqueIndex:uq_expenses_recurrence_occurrence,priority:2"`
	CategoryID        uuid.UUID                `gorm:"column:category_id;type:uuid;not null;index:idx_expenses_category_id"`
	Category          *ExpenseCategory         `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Description       string                   `gorm:"column:description;size:500;not null"`
	Amount            decimal.Decimal          `gorm:"column:amount;type:numeric(12,2);not null"`
	PaymentMethod     enums.PaymentMethod      `gorm:"column:payment_method;size:20;not null;default:'cash'"`
	IsRecurring       bool                     `gorm:"column:is_recurring;not null;default:false"`
	RecurrencePattern *enums.RecurrencePattern `gorm:"column:recurrence_pattern;size:20"`
	RecurrenceEndDate *types.Date              `gorm:"column:recurrence_end_date;type:date"`
	Notes             string                   `gorm:"column:notes;not null;default:''"`
	// RecurrenceParentID links a generated occurrence to its recurring template.
	RecurrenceParentID *uuid.UUID `gorm:"column:recurrence_parent_id;type:uuid;uniqueIndex:uq_expenses_recurrence_occurrence,priority:1"`
	RecurrenceParent   *Expense   `gorm:"foreignKey:RecurrenceParentID;constraint:OnDelete:SET NULL"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
