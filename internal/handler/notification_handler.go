package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID                uint64  `json:"id"`
	Type              string  `json:"type"`
	Title             string  `json:"title"`
	Body              string  `json:"body"`
	AdoptionRequestID *uint64 `json:"adoptionRequestId,omitempty"`
	AppointmentID     *uint64 `json:"appointmentId,omitempty"`
	PaymentID         *uint64 `json:"paymentId,omitempty"`
	Read              bool    `json:"read"`
	CreatedAt         string  `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:                n.ID,
		Type:              n.Type,
		Title:             n.Title,
		Body:              n.Body,
		AdoptionRequestID: n.AdoptionRequestID,
		AppointmentID:     n.AppointmentID,
		PaymentID:         n.PaymentID,
		Read:              n.ReadAt != nil,
		CreatedAt:         rfc3339(n.CreatedAt),
	}
}

type notificationList struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

// List returns unread notifications unless unread_only=false is passed.
// The repository clamps limit.
func (h *NotificationHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	unreadOnly := c.QueryParam("unread_only") != "false"

	list, unread, err := h.svc.List(c.Request().Context(), user(c).ID, unreadOnly, limit)
	if err != nil {
		return writeError(c, err)
	}
	out := notificationList{Notifications: make([]NotificationResponse, len(list)), UnreadCount: unread}
	for i := range list {
		out.Notifications[i] = toNotificationResponse(list[i])
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	if err := h.svc.MarkAllRead(c.Request().Context(), user(c).ID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
