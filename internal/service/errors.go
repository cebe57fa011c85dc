package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound               = errors.New("not_found")
	ErrForbidden              = errors.New("forbidden")
	ErrDuplicateRequest       = errors.New("duplicate_request")
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
	ErrValidation             = errors.New("validation_error")
	ErrGateway                = errors.New("gateway_error")
	ErrEmptyCart              = errors.New("no_cart")
	ErrAlreadyCheckedOut      = errors.New("already_checked_out")
	ErrInsufficientBalance    = errors.New("insufficient_balance")
	ErrUnavailable            = errors.New("unavailable")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func badTransition(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidStateTransition, fmt.Sprintf(format, args...))
}

// notFoundOr maps a missing row to ErrNotFound and passes other errors on.
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func u64(v uint64) *uint64 {
	return &v
}
