package service

import (
	"context"
	"log"

	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/repository"
)

// NotificationRef points a notification at the record it is about.
type NotificationRef struct {
	AdoptionRequestID *uint64
	AppointmentID     *uint64
	PaymentID         *uint64
}

type NotificationService interface {
	Notify(ctx context.Context, userID uint64, typ, title, body string, ref NotificationRef)
	List(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userID uint64) error
	MarkByAdoptionRequest(ctx context.Context, userID, requestID uint64) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort; it logs errors but does not return them to avoid breaking main flows.
func (s *notificationService) Notify(ctx context.Context, userID uint64, typ, title, body string, ref NotificationRef) {
	if userID == 0 || typ == "" {
		return
	}
	n := &model.Notification{
		UserID:            userID,
		Type:              typ,
		Title:             title,
		Body:              body,
		AdoptionRequestID: ref.AdoptionRequestID,
		AppointmentID:     ref.AppointmentID,
		PaymentID:         ref.PaymentID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("[notify] user=%d type=%s err=%v", userID, typ, err)
	}
}

func (s *notificationService) List(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userID == 0 {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) MarkByAdoptionRequest(ctx context.Context, userID, requestID uint64) error {
	if userID == 0 || requestID == 0 {
		return nil
	}
	return s.repo.MarkByAdoptionRequest(ctx, userID, requestID)
}
