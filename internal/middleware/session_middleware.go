package middleware

import (
	"log"
	"strings"

	"gamereview/internal/models"
	"gamereview/internal/services"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// ResolveSession is a Fiber middleware that attaches the caller's session.
// A bearer token wins when present and must be valid for the persisted
// session; otherwise the persisted device session is used. Requests without any session continue
// with no session attached.
func ResolveSession(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			if session := authService.CurrentUser(c.UserContext()); session.Active() {
				c.Locals(sessionKey, session)
			}
			return c.Next()
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		session, err := authService.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			log.Printf("Session token validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}
		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// SessionFrom returns the session attached by ResolveSession, or nil.
func SessionFrom(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(sessionKey).(*models.Session)
	return session
}
