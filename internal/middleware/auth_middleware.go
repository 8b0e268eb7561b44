package middleware

import (
	"context"
	"strings"

	"quizhub/internal/auth"
	"quizhub/internal/domain"
	"quizhub/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	SessionCookieName   = "session_token"
	IdentityKey         = "identity" // Key for storing auth.Identity in fiber.Ctx locals
)

// Authenticator verifies an access token. service.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

// TokenFromRequest returns the Bearer token, falling back to the session cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(AuthorizationHeader); strings.HasPrefix(header, BearerSchema) {
		if token := strings.TrimSpace(strings.TrimPrefix(header, BearerSchema)); token != "" {
			return token
		}
	}
	return c.Cookies(SessionCookieName)
}

// Protected rejects requests without a valid access token and stores the
// verified identity in the context.
func Protected(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return domain.NewUnauthorizedError("authentication required")
		}

		identity, err := authenticator.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// OptionalAuth stores the identity when a valid token is present and
// otherwise proceeds anonymously.
func OptionalAuth(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return c.Next()
		}

		identity, err := authenticator.Authenticate(c.UserContext(), token)
		if err != nil {
			logger.Get().Debug("OptionalAuth: token rejected, proceeding as anonymous.", zap.Error(err))
			return c.Next()
		}

		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by Protected or OptionalAuth.
func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(IdentityKey).(auth.Identity)
	if !ok || identity.IsZero() {
		return auth.Identity{}, false
	}
	return identity, true
}
