package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrOTPNotFound = errors.New("no OTP was sent to this number")
	ErrOTPExpired  = errors.New("OTP has expired")
	ErrOTPMismatch = errors.New("invalid OTP")
	ErrDelivery    = errors.New("failed to send OTP")
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal error")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError reports a missing resource; the handler layer shows detail
// to the client.
func NotFoundError(detail string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, detail)
}

func internalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
