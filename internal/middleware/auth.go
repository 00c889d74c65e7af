package middleware

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Locals keys written by AuthRequired.
const (
	LocalUserID       = "userID"
	LocalTokenID      = "tokenID"
	LocalTokenExpires = "tokenExpiresAt"
)

// TokenVerifier turns a raw bearer token into a verified identity.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthRequired enforces authentication for protected routes. The header value
// is split on whitespace and its second field is verified; the scheme word is
// not inspected. revoked may be nil.
func AuthRequired(verifier TokenVerifier, revoked RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return reject(c, "missing", "Authorization header required")
		}

		fields := strings.Fields(header)
		if len(fields) < 2 {
			return reject(c, "invalid", "Invalid authorization header format")
		}

		claims, err := verifier.Verify(fields[1])
		if err != nil {
			return reject(c, "invalid", "Invalid or expired token")
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				Logger.WarnContext(c.UserContext(), "token revocation check failed", "error", err)
			} else if isRevoked {
				return reject(c, "revoked", "Token has been revoked")
			}
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalTokenID, claims.ID)
		c.Locals(LocalTokenExpires, claims.ExpiresAt)
		c.SetUserContext(WithUserID(c.UserContext(), claims.UserID))
		observability.AuthGateOutcomes.WithLabelValues("ok").Inc()

		return c.Next()
	}
}

func reject(c *fiber.Ctx, result, message string) error {
	observability.AuthGateOutcomes.WithLabelValues(result).Inc()
	return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthenticatedError(message))
}

// UserID returns the caller id set by AuthRequired.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}

// TokenID returns the jti and expiry of the token presented to AuthRequired.
func TokenID(c *fiber.Ctx) (string, time.Time, bool) {
	jti, ok := c.Locals(LocalTokenID).(string)
	if !ok || jti == "" {
		return "", time.Time{}, false
	}
	expiresAt, _ := c.Locals(LocalTokenExpires).(time.Time)
	return jti, expiresAt, true
}
