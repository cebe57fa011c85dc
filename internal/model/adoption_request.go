package model

import (
	"fmt"
	"time"
)

type AdoptionStatus string

const (
	AdoptionStatusPending  AdoptionStatus = "pending"
	AdoptionStatusApproved AdoptionStatus = "approved"
	AdoptionStatusDeclined AdoptionStatus = "declined"
)

type AdoptionRequest struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement"`
	AdopterID    uint64         `gorm:"column:adopter_id;index;not null"`
	Adopter      *User          `gorm:"foreignKey:AdopterID;constraint:OnDelete:CASCADE"`
	PetID        *uint64        `gorm:"column:pet_id;index"`
	Pet          *Pet           `gorm:"foreignKey:PetID;constraint:OnDelete:CASCADE"`
	OwnedPetID   *uint64        `gorm:"column:owned_pet_id;index"`
	OwnedPet     *OwnedPet      `gorm:"foreignKey:OwnedPetID;constraint:OnDelete:CASCADE"`
	Message      string         `gorm:"type:text"`
	Status       AdoptionStatus `gorm:"size:16;not null;index"`
	PendingKey   *string        `gorm:"column:pending_key;size:96;uniqueIndex"`
	FeePaidAt    *time.Time     `gorm:"column:fee_paid_at"`
	ResolvedByID *uint64        `gorm:"column:resolved_by_id"`
	ResolvedAt   *time.Time     `gorm:"column:resolved_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (AdoptionRequest) TableName() string {
	return "adoption_requests"
}

// PendingKeyFor identifies an active request of one adopter for one target.
func PendingKeyFor(adopterID uint64, petID, ownedPetID *uint64) string {
	if petID != nil {
		return fmt.Sprintf("pet:%d:%d", *petID, adopterID)
	}
	if ownedPetID != nil {
		return fmt.Sprintf("owned:%d:%d", *ownedPetID, adopterID)
	}
	return ""
}
