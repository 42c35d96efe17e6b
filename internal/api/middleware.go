package api

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/capiorg/backend/internal/auth"
)

// JWTAuth resolves the bearer credential through the auth collaborator and
// stores the caller identity in request locals.
func JWTAuth(a auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return fail(c, fiber.StatusUnauthorized, "unauthorized", "missing authorization")
		}
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid authorization")
		}
		ident, err := a.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid token")
		}
		c.Locals("user_id", ident.UserID.String())
		c.Locals("session_id", ident.SessionID)
		return c.Next()
	}
}

// RequestTimeout puts a deadline on the request context so a request cannot
// hold a pooled database connection past the configured ceiling.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
