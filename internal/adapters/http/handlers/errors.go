package handlers

import (
	"errors"
	"strconv"

	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/pkg/logger"
	"swadhrama-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// otpFailures are reported to clients as a single "Invalid OTP"
var otpFailures = []error{
	domain.ErrOTPNotFound,
	domain.ErrOTPExpired,
	domain.ErrOTPMismatch,
	domain.ErrOTPConsumed,
	domain.ErrOTPAttemptsExceeded,
}

func isOTPFailure(err error) bool {
	for _, target := range otpFailures {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleError maps service errors to the response envelope. Unknown errors
// are logged and answered with 500 and the fallback message.
func handleError(c *fiber.Ctx, err error, fallback string) error {
	var ve *domain.ValidationError

	switch {
	case errors.As(err, &ve):
		return response.BadRequest(c, ve.Message)
	case errors.Is(err, domain.ErrOTPCooldown):
		return response.TooManyRequests(c, "Please wait before requesting another code")
	case isOTPFailure(err):
		return response.Unauthorized(c, "Invalid OTP")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid email/phone or password")
	case errors.Is(err, domain.ErrTokenExpired):
		return response.Unauthorized(c, "Token expired, please login again")
	case errors.Is(err, domain.ErrTokenRevoked):
		return response.Unauthorized(c, "Token revoked, please login again")
	case errors.Is(err, domain.ErrAuthentication):
		return response.Unauthorized(c, "Authentication failed")
	case errors.Is(err, domain.ErrUserSuspended):
		return response.Forbidden(c, "Account is suspended")
	case errors.Is(err, domain.ErrEmailNotVerified):
		return response.Forbidden(c, "Account is not verified yet")
	case errors.Is(err, domain.ErrAuthorization):
		return response.Forbidden(c, "You don't have permission to perform this action")
	case errors.Is(err, domain.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, domain.ErrBookingNotFound):
		return response.NotFound(c, "Booking request not found")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Resource not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, "Booking request has already been decided")
	case errors.Is(err, domain.ErrSelfDeletion):
		return response.Conflict(c, "You cannot delete your own account")
	case errors.Is(err, domain.ErrSelfModification):
		return response.Conflict(c, "You cannot change your own role or status")
	case errors.Is(err, domain.ErrUserExists):
		return response.Conflict(c, "An account with this email or phone already exists")
	case errors.Is(err, domain.ErrConflict):
		return response.Conflict(c, "Resource already exists")
	case errors.Is(err, domain.ErrNotImplemented):
		return response.NotImplemented(c, "This feature is not available yet")
	default:
		logger.Error(c.UserContext(), fallback, zap.Error(err), zap.String("path", c.Path()))
		return response.InternalServerError(c, fallback)
	}
}

// actorFrom returns the authenticated caller set by the auth middleware
func actorFrom(c *fiber.Ctx) (domain.Actor, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return domain.Actor{}, false
	}
	role, _ := c.Locals("role").(string)
	return domain.Actor{UserID: userID, Role: domain.Role(role)}, true
}

// paramID parses a numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
