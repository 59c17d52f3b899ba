// middleware/request_logger.go
package middleware

import (
	"time"

	"eco-cycle-game/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger writes one structured access-log line per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the app error handler set the final status before we read it.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Log.Errorw("💥 request failed", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Log.Warnw("⚠️ request rejected", fields...)
		default:
			logger.Log.Infow("➡️ request", fields...)
		}
		return nil
	}
}
