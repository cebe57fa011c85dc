package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/shinyyama/petverse-backend/internal/authz"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/repository"
)

const maxMessageRunes = 2000

type ChatService interface {
	OpenRoom(ctx context.Context, actor *model.User, requestID uint64) (*model.ChatRoom, error)
	PostMessage(ctx context.Context, actor *model.User, roomID uint64, text string) (*model.ChatMessage, error)
	ListMessages(ctx context.Context, actor *model.User, roomID uint64) ([]model.ChatMessage, error)
}

type chatService struct {
	store  *repository.Store
	notify NotificationService
}

func NewChatService(store *repository.Store, notify NotificationService) ChatService {
	return &chatService{store: store, notify: notify}
}

// membership describes how actor relates to the room of an adoption
// request. other is the participant who did not send.
type membership struct {
	participant bool
	admin       bool
	adopterID   uint64
	counterID   uint64
}

func (m membership) other(senderID uint64) uint64 {
	if senderID == m.adopterID {
		return m.counterID
	}
	return m.adopterID
}

func (s *chatService) membershipFor(ctx context.Context, actor *model.User, requestID uint64) (membership, error) {
	if actor == nil {
		return membership{}, ErrForbidden
	}
	req, err := s.store.Adoptions.FindByID(ctx, requestID)
	if err != nil {
		return membership{}, notFoundOr(err)
	}
	party, err := resolveParty(ctx, s.store, req)
	if err != nil {
		return membership{}, err
	}
	m := membership{
		participant: actor.ID == req.AdopterID || actor.ID == party.counterpartyID,
		admin:       authz.Can(actor, authz.Administer),
		adopterID:   req.AdopterID,
		counterID:   party.counterpartyID,
	}
	if !m.participant && !m.admin {
		return membership{}, ErrNotFound
	}
	return m, nil
}

func (s *chatService) room(ctx context.Context, actor *model.User, roomID uint64) (*model.ChatRoom, membership, error) {
	room, err := s.store.Chats.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, membership{}, notFoundOr(err)
	}
	m, err := s.membershipFor(ctx, actor, room.AdoptionRequestID)
	if err != nil {
		return nil, membership{}, err
	}
	return room, m, nil
}

func (s *chatService) OpenRoom(ctx context.Context, actor *model.User, requestID uint64) (*model.ChatRoom, error) {
	if _, err := s.membershipFor(ctx, actor, requestID); err != nil {
		return nil, err
	}
	return s.store.Chats.FindOrCreateRoom(ctx, requestID)
}

func (s *chatService) PostMessage(ctx context.Context, actor *model.User, roomID uint64, text string) (*model.ChatMessage, error) {
	room, m, err := s.room(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if !m.participant {
		return nil, ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("message text is required")
	}
	if utf8.RuneCountInString(text) > maxMessageRunes {
		return nil, invalid("message is longer than %d characters", maxMessageRunes)
	}
	msg := &model.ChatMessage{RoomID: room.ID, SenderID: actor.ID, Body: text}
	if err := s.store.Chats.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	log.Printf("[chat] rid=%s actor=%d room=%d message=%d stage=posted", reqctx.RID(ctx), actor.ID, room.ID, msg.ID)
	s.notify.Notify(ctx, m.other(actor.ID), "chat_message", "New message",
		fmt.Sprintf("%s sent you a message about adoption request #%d.", actor.Name, room.AdoptionRequestID),
		NotificationRef{AdoptionRequestID: u64(room.AdoptionRequestID)})
	return msg, nil
}

func (s *chatService) ListMessages(ctx context.Context, actor *model.User, roomID uint64) ([]model.ChatMessage, error) {
	room, _, err := s.room(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	return s.store.Chats.ListMessages(ctx, room.ID)
}
