package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrValidation        = errors.New("validation failed")
	ErrAuthentication    = errors.New("authentication failed")
	ErrAuthorization     = errors.New("forbidden")
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSelfDeletion      = errors.New("cannot delete your own account")
	ErrSelfModification  = errors.New("cannot change your own role or status")
	ErrNotImplemented    = errors.New("not implemented")
	ErrDelivery          = errors.New("otp delivery failed")
)

// Authentication subkinds. errors.Is(err, ErrAuthentication) holds for all of them.
var (
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	ErrOTPNotFound         = fmt.Errorf("%w: no active otp", ErrAuthentication)
	ErrOTPExpired          = fmt.Errorf("%w: otp expired", ErrAuthentication)
	ErrOTPMismatch         = fmt.Errorf("%w: otp mismatch", ErrAuthentication)
	ErrOTPConsumed         = fmt.Errorf("%w: otp already consumed", ErrAuthentication)
	ErrOTPAttemptsExceeded = fmt.Errorf("%w: too many otp attempts", ErrAuthentication)
	ErrTokenExpired        = fmt.Errorf("%w: token expired", ErrAuthentication)
	ErrTokenInvalid        = fmt.Errorf("%w: token invalid", ErrAuthentication)
	ErrTokenRevoked        = fmt.Errorf("%w: token revoked", ErrAuthentication)
)

// Account errors
var (
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrBookingNotFound  = fmt.Errorf("%w: booking request", ErrNotFound)
	ErrUserExists       = fmt.Errorf("%w: user", ErrConflict)
	ErrUserSuspended    = fmt.Errorf("%w: account suspended", ErrAuthorization)
	ErrEmailNotVerified = fmt.Errorf("%w: contact not verified", ErrAuthorization)
	ErrOTPCooldown      = errors.New("otp requested too recently")
)

// ValidationError carries a client-facing message for malformed input
type ValidationError struct {
	Message string
}

// NewValidationError creates a validation error
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// OTPFailureKind names the OTP failure for audit logs
func OTPFailureKind(err error) string {
	switch {
	case errors.Is(err, ErrOTPExpired):
		return "expired"
	case errors.Is(err, ErrOTPMismatch):
		return "mismatch"
	case errors.Is(err, ErrOTPConsumed):
		return "already_consumed"
	case errors.Is(err, ErrOTPAttemptsExceeded):
		return "attempts_exceeded"
	case errors.Is(err, ErrOTPNotFound):
		return "not_found"
	default:
		return "unknown"
	}
}
