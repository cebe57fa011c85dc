package model

import "time"

type ChatRoom struct {
	ID                uint64           `gorm:"primaryKey;autoIncrement"`
	AdoptionRequestID uint64           `gorm:"column:adoption_request_id;uniqueIndex;not null"`
	AdoptionRequest   *AdoptionRequest `gorm:"foreignKey:AdoptionRequestID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time        `gorm:"autoCreateTime"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

type ChatMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	RoomID    uint64    `gorm:"column:room_id;index;not null"`
	Room      *ChatRoom `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	SenderID  uint64    `gorm:"column:sender_id;index;not null"`
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
