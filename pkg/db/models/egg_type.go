package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EggType is a sellable grade of egg. Referenced types are deactivated, never
// deleted.
type EggType struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;size:50;not null;uniqueIndex:uq_egg_types_name"`
	Description  string    `gorm:"column:description;not null;default:''"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *EggType) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
