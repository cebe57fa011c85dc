package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/service"
)

type PaymentHandler struct {
	svc   service.PaymentService
	keyID string
}

// NewPaymentHandler takes the public gateway key id the browser checkout
// needs; it is echoed with every gateway order.
func NewPaymentHandler(svc service.PaymentService, keyID string) *PaymentHandler {
	return &PaymentHandler{svc: svc, keyID: keyID}
}

type PaymentResponse struct {
	ID               uint64  `json:"id"`
	Kind             string  `json:"paymentFor"`
	Amount           string  `json:"amount"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
	AppointmentID    *uint64 `json:"appointmentId,omitempty"`
	AdoptionID       *uint64 `json:"adoptionRequestId,omitempty"`
	OrderID          *uint64 `json:"orderId,omitempty"`
	GatewayOrderID   string  `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string  `json:"gatewayPaymentId,omitempty"`
	FailureReason    string  `json:"failureReason,omitempty"`
	SettledAt        *string `json:"settledAt,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

func toPaymentResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		Kind:             string(p.Kind),
		Amount:           p.Amount.StringFixed(2),
		Currency:         p.Currency,
		Status:           string(p.Status),
		AppointmentID:    p.AppointmentID,
		AdoptionID:       p.AdoptionRequestID,
		OrderID:          p.OrderID,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		FailureReason:    p.FailureReason,
		SettledAt:        optTime(p.SettledAt),
		CreatedAt:        rfc3339(p.CreatedAt),
	}
}

type gatewayOrderResponse struct {
	Payment     PaymentResponse `json:"payment"`
	KeyID       string          `json:"keyId,omitempty"`
	AmountMinor int64           `json:"amountMinor"`
}

type verifyRequest struct {
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	Signature        string `json:"signature"`
}

func (h *PaymentHandler) ListMine(c echo.Context) error {
	list, err := h.svc.ListMine(c.Request().Context(), user(c))
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]PaymentResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toPaymentResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	p, err := h.svc.Get(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	p, err := h.svc.InitiateGatewayOrder(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, gatewayOrderResponse{
		Payment:     toPaymentResponse(p),
		KeyID:       h.keyID,
		AmountMinor: service.MinorUnits(p.Amount),
	})
}

func (h *PaymentHandler) Verify(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	p, err := h.svc.VerifyAndSettle(c.Request().Context(), user(c), service.SettleInput{
		PaymentID:        id,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewayOrderID:   req.GatewayOrderID,
		Signature:        req.Signature,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) Receipt(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	pdf, err := h.svc.Receipt(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, fmt.Sprintf("receipt-%d.pdf", id), pdf)
}

func sendPDF(c echo.Context, name string, pdf []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
