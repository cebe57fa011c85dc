package repository

import (
	"context"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

type ChatRepository interface {
	FindOrCreateRoom(ctx context.Context, adoptionRequestID uint64) (*model.ChatRoom, error)
	FindRoomByID(ctx context.Context, id uint64) (*model.ChatRoom, error)
	CreateMessage(ctx context.Context, msg *model.ChatMessage) error
	ListMessages(ctx context.Context, roomID uint64) ([]model.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindOrCreateRoom(ctx context.Context, adoptionRequestID uint64) (*model.ChatRoom, error) {
	room := model.ChatRoom{AdoptionRequestID: adoptionRequestID}
	if err := r.db.WithContext(ctx).
		Where("adoption_request_id = ?", adoptionRequestID).
		FirstOrCreate(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) FindRoomByID(ctx context.Context, id uint64) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatRepository) ListMessages(ctx context.Context, roomID uint64) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
