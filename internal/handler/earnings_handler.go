package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/service"
	"github.com/shopspring/decimal"
)

type EarningsHandler struct {
	svc service.EarningsService
}

func NewEarningsHandler(svc service.EarningsService) *EarningsHandler {
	return &EarningsHandler{svc: svc}
}

type withdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *EarningsHandler) Get(c echo.Context) error {
	bal, err := h.svc.Balance(c.Request().Context(), user(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"balance": bal.StringFixed(2)})
}

func (h *EarningsHandler) Withdraw(c echo.Context) error {
	var req withdrawRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	bal, err := h.svc.Withdraw(c.Request().Context(), user(c), req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"balance": bal.StringFixed(2)})
}
