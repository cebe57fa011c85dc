package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type ServiceAppointment struct {
	ID            uint64            `gorm:"primaryKey;autoIncrement"`
	UserID        uint64            `gorm:"column:user_id;index;not null"`
	User          *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	OwnedPetID    uint64            `gorm:"column:owned_pet_id;index;not null"`
	OwnedPet      *OwnedPet         `gorm:"foreignKey:OwnedPetID;constraint:OnDelete:CASCADE"`
	ServiceID     uint64            `gorm:"column:service_id;index;not null"`
	Service       *Service          `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	AppointmentAt time.Time         `gorm:"column:appointment_at;not null"`
	Notes         string            `gorm:"type:text"`
	Status        AppointmentStatus `gorm:"size:16;not null;index"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime"`
}

func (ServiceAppointment) TableName() string {
	return "service_appointments"
}
