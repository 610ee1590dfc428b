package middleware

import (
	"context"
	"errors"
	"strings"

	"swadhrama-api/internal/config"
	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/pkg/jwt"
	"swadhrama-api/internal/pkg/logger"
	"swadhrama-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := tokenFromRequest(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("role", claims.Role)
		c.SetUserContext(logger.WithUserID(c.UserContext(), claims.UserID))

		return c.Next()
	}
}

// tokenFromRequest reads the access token from the cookie, then the
// Authorization header
func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// RoleLookup resolves the role currently stored for a user
type RoleLookup interface {
	CurrentRole(ctx context.Context, userID uint) (domain.Role, error)
}

// CurrentRole replaces the role from the token with the stored one, so a
// demoted or suspended user loses access before the token expires. Mount it
// after AuthMiddleware.
func CurrentRole(lookup RoleLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		role, err := lookup.CurrentRole(c.UserContext(), userID)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.Unauthorized(c, "Account no longer exists")
		case errors.Is(err, domain.ErrUserSuspended):
			return response.Forbidden(c, "Account is suspended")
		case err != nil:
			logger.Error(c.UserContext(), "Role lookup failed", zap.Error(err))
			return response.InternalServerError(c, "Failed to check permissions")
		}

		c.Locals("role", string(role))
		return c.Next()
	}
}

// RequireRoles creates role-based authorization middleware
func RequireRoles(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if domain.Role(role) == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the ADMIN role
func AdminOnly() fiber.Handler {
	return RequireRoles(domain.RoleAdmin)
}
