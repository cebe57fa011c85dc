package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/service"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound, "not_found", "not found"},
		{"wrapped not found", fmt.Errorf("load pet: %w", service.ErrNotFound), http.StatusNotFound, "not_found", "not found"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "forbidden", "not allowed"},
		{"duplicate", service.ErrDuplicateRequest, http.StatusConflict, "duplicate_request", "a pending request already exists"},
		{"invalid state detail", fmt.Errorf("%w: request is already approved", service.ErrInvalidStateTransition), http.StatusConflict, "invalid_state", "request is already approved"},
		{"invalid state bare", service.ErrInvalidStateTransition, http.StatusConflict, "invalid_state", "invalid state transition"},
		{"validation detail", fmt.Errorf("%w: name is required", service.ErrValidation), http.StatusBadRequest, "bad_request", "name is required"},
		{"empty cart", service.ErrEmptyCart, http.StatusBadRequest, "no_cart", "no cart"},
		{"checked out", service.ErrAlreadyCheckedOut, http.StatusConflict, "already_checked_out", "this cart was already checked out"},
		{"gateway", fmt.Errorf("%w: timeout", service.ErrGateway), http.StatusPaymentRequired, "payment_failed", "payment failed, retry"},
		{"balance", service.ErrInsufficientBalance, http.StatusBadRequest, "bad_request", "insufficient balance"},
		{"unavailable", service.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "feature not configured"},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "internal_error", "internal error"},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), w)
			require.NoError(t, writeError(c, tc.err))
			require.Equal(t, tc.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, tc.code, resp.Error.Code)
			require.Equal(t, tc.message, resp.Error.Message)
		})
	}
}

func TestParseID(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		raw string
		id  uint64
		ok  bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(tc.raw)
		id, ok := parseID(c, "id")
		require.Equal(t, tc.ok, ok, tc.raw)
		require.Equal(t, tc.id, id, tc.raw)
	}
}
