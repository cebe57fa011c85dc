package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServiceCategory struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:80;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ServiceCategory) TableName() string {
	return "service_categories"
}

// Service is a bookable grooming or vet offering.
type Service struct {
	ID              uint64           `gorm:"primaryKey;autoIncrement"`
	CategoryID      uint64           `gorm:"column:category_id;index;not null"`
	Category        *ServiceCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Name            string           `gorm:"size:120;not null"`
	Description     string           `gorm:"type:text"`
	Price           decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	DurationMinutes int              `gorm:"column:duration_minutes;not null;default:30"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time        `gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime"`
}

func (Service) TableName() string {
	return "services"
}
