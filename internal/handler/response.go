package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	appmw "github.com/shinyyama/petverse-backend/internal/middleware"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// detail strips the sentinel prefix from a wrapped service error.
func detail(err error, sentinel error, fallback string) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() {
		return fallback
	}
	return msg
}

// writeError maps service errors to the HTTP status and error envelope.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrDuplicateRequest):
		return c.JSON(http.StatusConflict, NewErrorResponse("duplicate_request", "a pending request already exists"))
	case errors.Is(err, service.ErrInvalidStateTransition):
		return c.JSON(http.StatusConflict, NewErrorResponse("invalid_state", detail(err, service.ErrInvalidStateTransition, "invalid state transition")))
	case errors.Is(err, service.ErrAlreadyCheckedOut):
		return c.JSON(http.StatusConflict, NewErrorResponse("already_checked_out", "this cart was already checked out"))
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", detail(err, service.ErrValidation, "invalid request")))
	case errors.Is(err, service.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("no_cart", "no cart"))
	case errors.Is(err, service.ErrInsufficientBalance):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "insufficient balance"))
	case errors.Is(err, service.ErrGateway):
		return c.JSON(http.StatusPaymentRequired, NewErrorResponse("payment_failed", "payment failed, retry"))
	case errors.Is(err, service.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "feature not configured"))
	default:
		log.Printf("[http] rid=%s actor=%d path=%s err=%v", reqctx.RID(c.Request().Context()), reqctx.UserID(c.Request().Context()), c.Path(), err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "internal error"))
	}
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid "+name))
}

func badJSON(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
}

func user(c echo.Context) *model.User {
	return appmw.CurrentUser(c)
}

func rfc3339(t time.Time) string {
	return t.Format(time.RFC3339)
}

func optTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}
