// handlers/errors.go
package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"eco-cycle-game/logger"
	"eco-cycle-game/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// statusFor maps a service error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrPreconditionFailed):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidArgument):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrConflict):
		// The store lost every version race on one player. Nothing was
		// written, so clients may retry the same request.
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {"error": CODE, "detail": message}. Internal errors are
// logged and hidden from the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	var domainErr *services.Error
	if errors.As(err, &domainErr) {
		return c.Status(status).JSON(fiber.Map{
			"error":  domainErr.Code,
			"detail": domainErr.Message,
		})
	}

	if status == fiber.StatusInternalServerError {
		logger.Log.Errorw("❌ internal error", "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{
			"error":  "INTERNAL",
			"detail": "internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error":  "ERROR",
		"detail": err.Error(),
	})
}

// ErrorHandler is the fiber.Config error handler: it keeps fiber's own errors
// (404 route, 405, body too large) in the same JSON shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":  strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(fe.Code), " ", "_")),
			"detail": fe.Message,
		})
	}
	return respondError(c, err)
}

// requestParam reads key from the query string, falling back to a JSON body.
func requestParam(c *fiber.Ctx, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) || len(c.Body()) == 0 {
		return ""
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return ""
	}
	raw, ok := body[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Numbers (x, y) are passed through verbatim.
	return strings.TrimSpace(string(raw))
}
