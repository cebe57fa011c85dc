package model

import "time"

type User struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	FirebaseUID *string   `gorm:"column:firebase_uid;size:128;uniqueIndex"`
	Email       string    `gorm:"size:255;index"`
	Name        string    `gorm:"size:120;not null"`
	Role        Role      `gorm:"size:16;not null;index"`
	HasPet      bool      `gorm:"column:has_pet;not null;default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
