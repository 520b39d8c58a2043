package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/eggtrade-backend/pkg/pagination"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type CategoryDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateCategoryInput struct {
	Name         string
	Description  string
	IsActive     *bool
	DisplayOrder int
}

type ExpenseDTO struct {
	ID                uuid.UUID                `json:"id"`
	Date              types.Date               `json:"date"`
	CategoryID        uuid.UUID                `json:"category"`
	CategoryName      string                   `json:"category_name,omitempty"`
	Description       string                   `json:"description"`
	Amount            decimal.Decimal          `json:"amount"`
	PaymentMethod     enums.PaymentMethod      `json:"payment_method"`
	IsRecurring       bool                     `json:"is_recurring"`
	RecurrencePattern *enums.RecurrencePattern `json:"recurrence_pattern"`
	RecurrenceEndDate *types.Date              `json:"recurrence_end_date"`
	Notes             string                   `json:"notes"`
	// RecurrenceParentID is set on occurrences generated from a recurring expense.
	RecurrenceParentID *uuid.UUID `json:"recurrence_parent,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateExpenseInput records an expense. A zero Date means today in the
// business timezone and an empty PaymentMethod means cash.
type CreateExpenseInput struct {
	Date              types.Date
	CategoryID        uuid.UUID
	Description       string
	Amount            decimal.Decimal
	PaymentMethod     enums.PaymentMethod
	IsRecurring       bool
	RecurrencePattern *enums.RecurrencePattern
	RecurrenceEndDate *types.Date
	Notes             string
}

// UpdateExpenseInput applies only the non-nil fields. Turning IsRecurring off
// clears the recurrence pattern and end date.
type UpdateExpenseInput struct {
	Date              *types.Date
	CategoryID        *uuid.UUID
	Description       *string
	Amount            *decimal.Decimal
	PaymentMethod     *enums.PaymentMethod
	IsRecurring       *bool
	RecurrencePattern *enums.RecurrencePattern
	RecurrenceEndDate *types.Date
	Notes             *string
}

type ListParams struct {
	pkgpagination.Params
}

type ListResult = pkgpagination.Page[ExpenseDTO]

type listQuery struct {
	limit  int
	cursor *pkgpagination.Cursor
}

func categoryFromModel(m *models.ExpenseCategory) *CategoryDTO {
	return &CategoryDTO{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		IsActive:     m.IsActive,
		DisplayOrder: m.DisplayOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func expenseFromModel(m *models.Expense) *ExpenseDTO {
	dto := &ExpenseDTO{
		ID:                 m.ID,
		Date:               m.Date,
		CategoryID:         m.CategoryID,
		Description:        m.Description,
		Amount:             m.Amount,
		PaymentMethod:      m.PaymentMethod,
		IsRecurring:        m.IsRecurring,
		RecurrencePattern:  m.RecurrencePattern,
		RecurrenceEndDate:  m.RecurrenceEndDate,
		Notes:              m.Notes,
		RecurrenceParentID: m.RecurrenceParentID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Category != nil {
		dto.CategoryName = m.Category.Name
	}
	return dto
}
