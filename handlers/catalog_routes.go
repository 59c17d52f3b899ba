// handlers/catalog_routes.go
package handlers

import (
	"eco-cycle-game/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogRoutes(api fiber.Router, session *services.SessionService) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Eco Cycle Game API is running",
		})
	})

	api.Get("/bicycles", func(c *fiber.Ctx) error {
		bicycles, err := session.ListBicycles(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(bicycles)
	})

	api.Get("/shops", func(c *fiber.Ctx) error {
		shops, err := session.ListShops(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(shops)
	})

	// Missions are never cached: the completed flag changes at runtime.
	api.Get("/missions", func(c *fiber.Ctx) error {
		missions, err := session.ListMissions(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(missions)
	})
}
