package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	pkgpagination "github.com/angelmondragon/eggtrade-backend/pkg/pagination"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type CustomerDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateCustomerInput struct {
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	IsActive      *bool
}

// UpdateCustomerInput applies only the non-nil fields.
type UpdateCustomerInput struct {
	Name          *string
	ContactPerson *string
	Phone         *string
	Email         *string
	Address       *string
	IsActive      *bool
}

type ListParams struct {
	ActiveOnly bool
	pkgpagination.Params
}

type ListResult = pkgpagination.Page[CustomerDTO]

type listQuery struct {
	activeOnly bool
	limit      int
	cursor     *pkgpagination.Cursor
}

// OverrideDTO is a dated customer price. A null price_per_crate means the
// customer pays the base wholesale price from that date.
type OverrideDTO struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    uuid.UUID           `json:"customer"`
	EggTypeID     uuid.UUID           `json:"egg_type"`
	EggTypeName   string              `json:"egg_type_name,omitempty"`
	PricePerCrate decimal.NullDecimal `json:"price_per_crate"`
	EffectiveDate types.Date          `json:"effective_date"`
	Notes         string              `json:"notes"`
	CreatedAt     time.Time           `json:"created_at"`
}

type CreateOverrideInput struct {
	EggTypeID     uuid.UUID
	PricePerCrate decimal.NullDecimal
	EffectiveDate types.Date
	Notes         string
}

func customerFromModel(m *models.WholesaleCustomer) *CustomerDTO {
	if m == nil {
		return nil
	}
	return &CustomerDTO{
		ID:            m.ID,
		Name:          m.Name,
		ContactPerson: m.ContactPerson,
		Phone:         m.Phone,
		Email:         m.Email,
		Address:       m.Address,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func overrideFromModel(m *models.CustomerPriceOverride) *OverrideDTO {
	if m == nil {
		return nil
	}
	dto := &OverrideDTO{
		ID:            m.ID,
		CustomerID:    m.CustomerID,
		EggTypeID:     m.EggTypeID,
		PricePerCrate: m.PricePerCrate,
		EffectiveDate: m.EffectiveDate,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
	}
	if m.EggType != nil {
		dto.EggTypeName = m.EggType.Name
	}
	return dto
}
