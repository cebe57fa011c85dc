package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/service"
)

type ChatHandler struct {
	svc service.ChatService
}

func NewChatHandler(svc service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRoomResponse struct {
	ID                uint64 `json:"id"`
	AdoptionRequestID uint64 `json:"adoptionRequestId"`
	CreatedAt         string `json:"createdAt"`
}

type ChatMessageResponse struct {
	ID        uint64 `json:"id"`
	RoomID    uint64 `json:"roomId"`
	SenderID  uint64 `json:"senderId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

func toChatMessageResponse(m *model.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: rfc3339(m.CreatedAt),
	}
}

type postMessageRequest struct {
	Body string `json:"body"`
}

func (h *ChatHandler) OpenRoom(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	room, err := h.svc.OpenRoom(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ChatRoomResponse{
		ID:                room.ID,
		AdoptionRequestID: room.AdoptionRequestID,
		CreatedAt:         rfc3339(room.CreatedAt),
	})
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]ChatMessageResponse, 0, len(msgs))
	for i := range msgs {
		resp = append(resp, toChatMessageResponse(&msgs[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) PostMessage(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	msg, err := h.svc.PostMessage(c.Request().Context(), user(c), id, req.Body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toChatMessageResponse(msg))
}
