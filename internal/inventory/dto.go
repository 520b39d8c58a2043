package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	pkgpagination "github.com/angelmondragon/eggtrade-backend/pkg/pagination"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type ItemInput struct {
	EggTypeID uuid.UUID
	Crates    int
}

// CreateIntakeLogInput records one day's intake. A zero RecordedDate means
// today in the business timezone.
type CreateIntakeLogInput struct {
	RecordedDate types.Date
	Notes        string
	Items        []ItemInput
}

// UpdateIntakeLogInput applies only the set fields. A nil Items keeps the
// current counts.
type UpdateIntakeLogInput struct {
	RecordedDate *types.Date
	Notes        *string
	Items        []ItemInput
}

type IntakeItemDTO struct {
	ID          uuid.UUID `json:"id"`
	EggTypeID   uuid.UUID `json:"egg_type"`
	EggTypeName string    `json:"egg_type_name,omitempty"`
	Crates      int       `json:"crates"`
}

type IntakeLogDTO struct {
	ID           uuid.UUID       `json:"id"`
	RecordedDate types.Date      `json:"recorded_date"`
	Notes        string          `json:"notes"`
	Items        []IntakeItemDTO `json:"items"`
	TotalCrates  int             `json:"total_crates"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ListParams struct {
	pkgpagination.Params
}

type ListResult = pkgpagination.Page[IntakeLogDTO]

type listQuery struct {
	limit  int
	cursor *pkgpagination.Cursor
}

func logFromModel(m *models.IntakeLog) *IntakeLogDTO {
	dto := &IntakeLogDTO{
		ID:           m.ID,
		RecordedDate: m.RecordedDate,
		Notes:        m.Notes,
		Items:        make([]IntakeItemDTO, 0, len(m.Items)),
		TotalCrates:  m.TotalCrates(),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for _, item := range m.Items {
		line := IntakeItemDTO{ID: item.ID, EggTypeID: item.EggTypeID, Crates: item.Crates}
		if item.EggType != nil {
			line.EggTypeName = item.EggType.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}

func itemsFromInput(items []ItemInput) []models.IntakeLogItem {
	rows := make([]models.IntakeLogItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.IntakeLogItem{EggTypeID: item.EggTypeID, Crates: item.Crates})
	}
	return rows
}
