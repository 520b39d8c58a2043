package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/internal/pricing"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/eggtrade-backend/pkg/pagination"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// ItemInput is one requested line. A nil PricePerCrate means "price it from
// the catalog".
type ItemInput struct {
	EggTypeID     uuid.UUID
	Quantity      int
	PricePerCrate decimal.NullDecimal
}

type CreateSaleInput struct {
	SaleType     enums.SaleType
	CustomerID   *uuid.UUID
	SaleDatetime *time.Time
	Notes        string
	Items        []ItemInput
}

// UpdateSaleInput changes only the fields that are set. A nil Items keeps the
// current lines and reprices them against the updated header.
type UpdateSaleInput struct {
	SaleType     *enums.SaleType
	Customer     types.NullableUUID
	SaleDatetime *time.Time
	Notes        *string
	Items        []ItemInput
}

type SaleItemDTO struct {
	ID            uuid.UUID           `json:"id,omitempty"`
	EggTypeID     uuid.UUID           `json:"egg_type"`
	EggTypeName   string              `json:"egg_type_name,omitempty"`
	Quantity      int                 `json:"quantity"`
	PricePerCrate decimal.NullDecimal `json:"price_per_crate"`
	UnitPrice     decimal.Decimal     `json:"unit_price"`
	PriceSource   enums.PriceSource   `json:"price_source"`
	LineTotal     decimal.Decimal     `json:"line_total"`
}

type SaleDTO struct {
	ID           uuid.UUID       `json:"id"`
	SaleType     enums.SaleType  `json:"sale_type"`
	CustomerID   *uuid.UUID      `json:"customer"`
	CustomerName string          `json:"customer_name,omitempty"`
	SaleDatetime time.Time       `json:"sale_datetime"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Notes        string          `json:"notes"`
	Items        []SaleItemDTO   `json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// QuoteDTO is a priced sale that was not persisted.
type QuoteDTO struct {
	SaleType     enums.SaleType  `json:"sale_type"`
	CustomerID   *uuid.UUID      `json:"customer"`
	SaleDatetime time.Time       `json:"sale_datetime"`
	AsOf         types.Date      `json:"as_of"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Items        []SaleItemDTO   `json:"items"`
}

type ListParams struct {
	pkgpagination.Params
}

type ListResult = pkgpagination.Page[SaleDTO]

type listQuery struct {
	limit  int
	cursor *pkgpagination.Cursor
}

func saleFromModel(m *models.Sale) *SaleDTO {
	if m == nil {
		return nil
	}
	dto := &SaleDTO{
		ID:           m.ID,
		SaleType:     m.SaleType,
		CustomerID:   m.CustomerID,
		SaleDatetime: m.SaleDatetime,
		TotalAmount:  m.TotalAmount,
		Notes:        m.Notes,
		Items:        make([]SaleItemDTO, 0, len(m.Items)),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Customer != nil {
		dto.CustomerName = m.Customer.Name
	}
	for _, item := range m.Items {
		line := SaleItemDTO{
			ID:            item.ID,
			EggTypeID:     item.EggTypeID,
			Quantity:      item.Quantity,
			PricePerCrate: item.PricePerCrate,
			UnitPrice:     item.UnitPrice,
			PriceSource:   item.PriceSource,
			LineTotal:     item.LineTotal,
		}
		if item.EggType != nil {
			line.EggTypeName = item.EggType.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}

func quoteFromComputed(c *pricing.ComputedSale) *QuoteDTO {
	quote := &QuoteDTO{
		SaleType:     c.SaleType,
		CustomerID:   c.CustomerID,
		SaleDatetime: c.SaleDatetime,
		AsOf:         c.AsOf,
		TotalAmount:  c.TotalAmount,
		Items:        make([]SaleItemDTO, 0, len(c.Lines)),
	}
	for _, line := range c.Lines {
		quote.Items = append(quote.Items, SaleItemDTO{
			EggTypeID:     line.EggTypeID,
			Quantity:      line.Quantity,
			PricePerCrate: line.PricePerCrate,
			UnitPrice:     line.UnitPrice,
			PriceSource:   line.Source,
			LineTotal:     line.LineTotal,
		})
	}
	return quote
}

// itemsFromComputed maps priced lines to rows, keeping submission order.
func itemsFromComputed(c *pricing.ComputedSale) []models.SaleItem {
	items := make([]models.SaleItem, 0, len(c.Lines))
	for i, line := range c.Lines {
		items = append(items, models.SaleItem{
			LineNo:        i + 1,
			EggTypeID:     line.EggTypeID,
			Quantity:      line.Quantity,
			PricePerCrate: line.PricePerCrate,
			UnitPrice:     line.UnitPrice,
			PriceSource:   line.Source,
			LineTotal:     line.LineTotal,
		})
	}
	return items
}

func linesFromInput(items []ItemInput) []pricing.LineInput {
	lines := make([]pricing.LineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.LineInput{
			EggTypeID:     item.EggTypeID,
			Quantity:      item.Quantity,
			PricePerCrate: item.PricePerCrate,
		})
	}
	return lines
}

func linesFromModel(items []models.SaleItem) []pricing.LineInput {
	lines := make([]pricing.LineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.LineInput{
			EggTypeID:     item.EggTypeID,
			Quantity:      item.Quantity,
			PricePerCrate: item.PricePerCrate,
		})
	}
	return lines
}
