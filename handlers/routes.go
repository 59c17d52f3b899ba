// handlers/routes.go
package handlers

import (
	"eco-cycle-game/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts every endpoint under /api.
func SetupRoutes(app *fiber.App, session *services.SessionService) {
	api := app.Group("/api")
	SetupCatalogRoutes(api, session)
	SetupPlayerRoutes(api, session)
}
