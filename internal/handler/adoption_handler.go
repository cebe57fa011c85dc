package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/service"
)

type AdoptionHandler struct {
	svc      service.AdoptionService
	payments service.PaymentService
	notify   service.NotificationService
}

func NewAdoptionHandler(svc service.AdoptionService, payments service.PaymentService, notify service.NotificationService) *AdoptionHandler {
	return &AdoptionHandler{svc: svc, payments: payments, notify: notify}
}

type AdoptionResponse struct {
	ID         uint64  `json:"id"`
	AdopterID  uint64  `json:"adopterId"`
	PetID      *uint64 `json:"petId,omitempty"`
	OwnedPetID *uint64 `json:"ownedPetId,omitempty"`
	Message    string  `json:"message"`
	Status     string  `json:"status"`
	FeePaidAt  *string `json:"feePaidAt,omitempty"`
	ResolvedAt *string `json:"resolvedAt,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

func toAdoptionResponse(r *model.AdoptionRequest) AdoptionResponse {
	return AdoptionResponse{
		ID:         r.ID,
		AdopterID:  r.AdopterID,
		PetID:      r.PetID,
		OwnedPetID: r.OwnedPetID,
		Message:    r.Message,
		Status:     string(r.Status),
		FeePaidAt:  optTime(r.FeePaidAt),
		ResolvedAt: optTime(r.ResolvedAt),
		CreatedAt:  rfc3339(r.CreatedAt),
	}
}

func toAdoptionList(list []model.AdoptionRequest) []AdoptionResponse {
	resp := make([]AdoptionResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toAdoptionResponse(&list[i]))
	}
	return resp
}

type createAdoptionRequest struct {
	PetID      *uint64 `json:"petId"`
	OwnedPetID *uint64 `json:"ownedPetId"`
	Message    string  `json:"message"`
}

func (h *AdoptionHandler) Create(c echo.Context) error {
	var req createAdoptionRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	r, err := h.svc.CreateRequest(c.Request().Context(), user(c),
		service.Target{PetID: req.PetID, OwnedPetID: req.OwnedPetID}, req.Message)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toAdoptionResponse(r))
}

func (h *AdoptionHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	u := user(c)
	r, err := h.svc.Get(c.Request().Context(), u, id)
	if err != nil {
		return writeError(c, err)
	}
	_ = h.notify.MarkByAdoptionRequest(c.Request().Context(), u.ID, r.ID)
	return c.JSON(http.StatusOK, toAdoptionResponse(r))
}

func (h *AdoptionHandler) Approve(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	r, err := h.svc.Approve(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAdoptionResponse(r))
}

func (h *AdoptionHandler) Decline(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	r, err := h.svc.Decline(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAdoptionResponse(r))
}

func (h *AdoptionHandler) ListMine(c echo.Context) error {
	list, err := h.svc.ListMine(c.Request().Context(), user(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAdoptionList(list))
}

func (h *AdoptionHandler) ListIncoming(c echo.Context) error {
	list, err := h.svc.ListIncoming(c.Request().Context(), user(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAdoptionList(list))
}

// CreatePayment opens (or returns) the pending adoption fee payment.
func (h *AdoptionHandler) CreatePayment(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	p, err := h.payments.CreateAdoptionPayment(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}
