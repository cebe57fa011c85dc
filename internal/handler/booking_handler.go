package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/service"
	"github.com/shopspring/decimal"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

type ServiceResponse struct {
	ID              uint64 `json:"id"`
	CategoryID      uint64 `json:"categoryId"`
	Category        string `json:"category,omitempty"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           string `json:"price"`
	DurationMinutes int    `json:"durationMinutes"`
}

func toServiceResponse(s *model.Service) ServiceResponse {
	resp := ServiceResponse{
		ID:              s.ID,
		CategoryID:      s.CategoryID,
		Name:            s.Name,
		Description:     s.Description,
		Price:           s.Price.StringFixed(2),
		DurationMinutes: s.DurationMinutes,
	}
	if s.Category != nil {
		resp.Category = s.Category.Name
	}
	return resp
}

type AppointmentResponse struct {
	ID            uint64           `json:"id"`
	UserID        uint64           `json:"userId"`
	OwnedPetID    uint64           `json:"ownedPetId"`
	PetName       string           `json:"petName,omitempty"`
	Service       *ServiceResponse `json:"service,omitempty"`
	ServiceID     uint64           `json:"serviceId"`
	AppointmentAt string           `json:"appointmentAt"`
	Notes         string           `json:"notes"`
	Status        string           `json:"status"`
	CreatedAt     string           `json:"createdAt"`
}

func toAppointmentResponse(a *model.ServiceAppointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:            a.ID,
		UserID:        a.UserID,
		OwnedPetID:    a.OwnedPetID,
		ServiceID:     a.ServiceID,
		AppointmentAt: rfc3339(a.AppointmentAt),
		Notes:         a.Notes,
		Status:        string(a.Status),
		CreatedAt:     rfc3339(a.CreatedAt),
	}
	if a.Service != nil {
		s := toServiceResponse(a.Service)
		resp.Service = &s
	}
	if a.OwnedPet != nil && a.OwnedPet.Pet != nil {
		resp.PetName = a.OwnedPet.Pet.Name
	}
	return resp
}

func toAppointmentList(list []model.ServiceAppointment) []AppointmentResponse {
	resp := make([]AppointmentResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toAppointmentResponse(&list[i]))
	}
	return resp
}

type bookRequest struct {
	OwnedPetID uint64 `json:"ownedPetId"`
	ServiceID  uint64 `json:"serviceId"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Notes      string `json:"notes"`
}

type confirmRequest struct {
	PaymentID        uint64 `json:"paymentId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

type serviceRequest struct {
	Category        string          `json:"category"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"durationMinutes"`
}

func (h *BookingHandler) ListServices(c echo.Context) error {
	list, err := h.svc.ListServices(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]ServiceResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toServiceResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) CreateService(c echo.Context) error {
	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	s, err := h.svc.CreateService(c.Request().Context(), user(c), service.ServiceInput{
		Category:        req.Category,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toServiceResponse(s))
}

func (h *BookingHandler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	a, p, err := h.svc.Book(c.Request().Context(), user(c), service.BookInput{
		OwnedPetID: req.OwnedPetID,
		ServiceID:  req.ServiceID,
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"appointment": toAppointmentResponse(a),
		"payment":     toPaymentResponse(p),
	})
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	a, err := h.svc.Get(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(a))
}

func (h *BookingHandler) Confirm(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	p, err := h.svc.Confirm(c.Request().Context(), user(c), service.ConfirmInput{
		PaymentID:        req.PaymentID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *BookingHandler) RetryPayment(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	p, err := h.svc.RetryPayment(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *BookingHandler) Complete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	a, err := h.svc.Complete(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(a))
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	a, err := h.svc.Cancel(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(a))
}

func (h *BookingHandler) ListMine(c echo.Context) error {
	list, err := h.svc.ListMine(c.Request().Context(), user(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentList(list))
}

func (h *BookingHandler) ListAll(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.svc.ListAll(c.Request().Context(), user(c), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentList(list))
}
