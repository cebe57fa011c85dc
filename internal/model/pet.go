package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pet is the underlying animal record. AddedByID never changes; possession
// after an adoption is tracked by OwnedPet rows.
type Pet struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	AddedByID   uint64          `gorm:"column:added_by_id;index;not null"`
	AddedBy     *User           `gorm:"foreignKey:AddedByID;constraint:OnDelete:CASCADE"`
	Name        string          `gorm:"size:120;not null"`
	Category    string          `gorm:"size:64;index;not null"`
	Description string          `gorm:"type:text"`
	ImageURL    *string         `gorm:"size:512"`
	AdoptionFee decimal.Decimal `gorm:"column:adoption_fee;type:decimal(10,2);not null;default:0"`
	IsAvailable bool            `gorm:"column:is_available;not null;default:false"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (Pet) TableName() string {
	return "pets"
}

func (p *Pet) HasFee() bool {
	return p.AdoptionFee.IsPositive()
}
