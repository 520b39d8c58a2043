package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// IntakeLog records the crates brought in on one calendar day.
type IntakeLog struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RecordedDate types.Date      `gorm:"column:recorded_date;type:date;not null;uniqueIndex:uq_intake_logs_recorded_date"`
	Notes        string          `gorm:"column:notes;not null;default:''"`
	Items        []IntakeLogItem `gorm:"foreignKey:IntakeLogID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *IntakeLog) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// TotalCrates sums the crates across every egg type.
func (l IntakeLog) TotalCrates() int {
	total := 0
	for _, item := range l.Items {
		total += item.Crates
	}
	return total
}

type IntakeLogItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	IntakeLogID uuid.UUID `gorm:"column:intake_log_id;type:uuid;not null;uniqueIndex:uq_intake_log_items_type,priority:1"`
	EggTypeID   uuid.UUID `gorm:"column:egg_type_id;type:uuid;not null;uniqueIndex:uq_intake_log_items_type,priority:2"`
	EggType     *EggType  `gorm:"foreignKey:EggTypeID;constraint:OnDelete:RESTRICT"`
	Crates      int       `gorm:"column:crates;not null;default:0;check:chk_intake_log_items_crates,crates >= 0"`
}

func (i *IntakeLogItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
