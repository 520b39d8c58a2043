package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// EggTypeDTO is the API shape of an egg type.
type EggTypeDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateEggTypeInput struct {
	Name         string
	Description  string
	IsActive     *bool
	DisplayOrder int
}

// UpdateEggTypeInput applies only the non-nil fields.
type UpdateEggTypeInput struct {
	Name         *string
	Description  *string
	IsActive     *bool
	DisplayOrder *int
}

// PriceTierDTO is the API shape of a dated base price.
type PriceTierDTO struct {
	ID            uuid.UUID       `json:"id"`
	Tier          enums.PriceTier `json:"tier"`
	EggTypeID     uuid.UUID       `json:"egg_type"`
	EggTypeName   string          `json:"egg_type_name,omitempty"`
	PricePerCrate decimal.Decimal `json:"price_per_crate"`
	EffectiveDate types.Date      `json:"effective_date"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

type CreatePriceTierInput struct {
	Tier          enums.PriceTier
	EggTypeID     uuid.UUID
	PricePerCrate decimal.Decimal
	EffectiveDate types.Date
	IsActive      *bool
}

type UpdatePriceTierInput struct {
	PricePerCrate *decimal.Decimal
	EffectiveDate *types.Date
	IsActive      *bool
}

// PriceTierFilter narrows a price tier listing. Zero values match everything.
type PriceTierFilter struct {
	EggTypeID  *uuid.UUID
	Tier       *enums.PriceTier
	ActiveOnly bool
}

func eggTypeFromModel(m *models.EggType) *EggTypeDTO {
	if m == nil {
		return nil
	}
	return &EggTypeDTO{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		IsActive:     m.IsActive,
		DisplayOrder: m.DisplayOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func priceTierFromModel(m *models.PriceTierEntry) *PriceTierDTO {
	if m == nil {
		return nil
	}
	dto := &PriceTierDTO{
		ID:            m.ID,
		Tier:          m.Tier,
		EggTypeID:     m.EggTypeID,
		PricePerCrate: m.PricePerCrate,
		EffectiveDate: m.EffectiveDate,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
	}
	if m.EggType != nil {
		dto.EggTypeName = m.EggType.Name
	}
	return dto
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
