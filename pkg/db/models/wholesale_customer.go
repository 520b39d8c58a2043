package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WholesaleCustomer struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name          string    `gorm:"column:name;size:200;not null;index:idx_wholesale_customers_name"`
	ContactPerson string    `gorm:"column:contact_person;size:100;not null;default:''"`
	Phone         string    `gorm:"column:phone;size:20;not null;default:''"`
	Email         string    `gorm:"column:email;size:254;not null;default:''"`
	Address       string    `gorm:"column:address;not null;default:''"`
	IsActive      bool      `gorm:"column:is_active;not null;index:idx_wholesale_customers_is_active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *WholesaleCustomer) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
