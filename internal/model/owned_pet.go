package model

import "time"

// OwnedPet links a user to a Pet they possess. ActivePetID mirrors PetID while
// the row is active and is cleared on retirement; its unique index allows at
// most one active possession per pet.
type OwnedPet struct {
	ID                  uint64     `gorm:"primaryKey;autoIncrement"`
	OwnerID             uint64     `gorm:"column:owner_id;index;not null"`
	Owner               *User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	PetID               uint64     `gorm:"column:pet_id;index;not null"`
	Pet                 *Pet       `gorm:"foreignKey:PetID;constraint:OnDelete:CASCADE"`
	IsListedForAdoption bool       `gorm:"column:is_listed_for_adoption;not null;default:false"`
	ActivePetID         *uint64    `gorm:"column:active_pet_id;uniqueIndex"`
	AcquiredAt          time.Time  `gorm:"column:acquired_at;not null"`
	RetiredAt           *time.Time `gorm:"column:retired_at"`
	CreatedAt           time.Time  `gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime"`
}

func (OwnedPet) TableName() string {
	return "owned_pets"
}

func (o *OwnedPet) Active() bool {
	return o.RetiredAt == nil
}
