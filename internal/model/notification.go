package model

import "time"

type Notification struct {
	ID                uint64     `gorm:"primaryKey;autoIncrement"`
	UserID            uint64     `gorm:"column:user_id;index;not null"`
	Type              string     `gorm:"column:type;size:64;not null"`
	Title             string     `gorm:"column:title;size:255"`
	Body              string     `gorm:"column:body;type:text"`
	AdoptionRequestID *uint64    `gorm:"column:adoption_request_id;index"`
	AppointmentID     *uint64    `gorm:"column:appointment_id;index"`
	PaymentID         *uint64    `gorm:"column:payment_id;index"`
	ReadAt            *time.Time `gorm:"column:read_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
