// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"strings"

	"eco-cycle-game/logger"

	"github.com/gofiber/fiber/v2"
)

// ServiceTokenMiddleware requires "Authorization: Bearer <token>" (or the raw
// token) on every request except the listed public paths.
func ServiceTokenMiddleware(expectedToken string, publicPaths ...string) fiber.Handler {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := public[c.Path()]; ok || c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			logger.Log.Warnw("🚫 [SERVICE_AUTH] Missing Authorization header", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":  "UNAUTHENTICATED",
				"detail": "service token missing",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			logger.Log.Warnw("❌ [SERVICE_AUTH] Invalid token", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":  "UNAUTHENTICATED",
				"detail": "invalid service token",
			})
		}

		return c.Next()
	}
}
