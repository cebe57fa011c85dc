package repository

import (
	"context"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

const maxNotificationPage = 50

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)
	MarkAllRead(ctx context.Context, userID uint64) error
	// MarkByAdoptionRequest reads only the notifications about one request,
	// e.g. when its detail page is opened.
	MarkByAdoptionRequest(ctx context.Context, userID, requestID uint64) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) unread(ctx context.Context, userID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID)
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > maxNotificationPage {
		limit = 20
	}
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = r.unread(ctx, userID)
	}
	var list []model.Notification
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	var cnt int64
	err := r.unread(ctx, userID).Count(&cnt).Error
	return cnt, err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint64) error {
	return r.unread(ctx, userID).Update("read_at", r.db.NowFunc()).Error
}

func (r *notificationRepository) MarkByAdoptionRequest(ctx context.Context, userID, requestID uint64) error {
	return r.unread(ctx, userID).
		Where("adoption_request_id = ?", requestID).
		Update("read_at", r.db.NowFunc()).Error
}
