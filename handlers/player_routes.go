// handlers/player_routes.go
package handlers

import (
	"strconv"

	"eco-cycle-game/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(api fiber.Router, session *services.SessionService) {
	player := api.Group("/player")

	player.Post("/create", func(c *fiber.Ctx) error {
		p, err := session.CreatePlayer(c.UserContext(), requestParam(c, "name"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"player_id": p.ID,
			"message":   "Player created successfully",
		})
	})

	player.Get("/:id", func(c *fiber.Ctx) error {
		p, err := session.GetPlayer(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	player.Put("/:id/position", func(c *fiber.Ctx) error {
		x, err := parseCoordinate(c, "x")
		if err != nil {
			return respondError(c, err)
		}
		y, err := parseCoordinate(c, "y")
		if err != nil {
			return respondError(c, err)
		}
		if err := session.UpdatePosition(c.UserContext(), c.Params("id"), x, y); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Position updated successfully"})
	})

	player.Post("/:id/purchase_bicycle", func(c *fiber.Ctx) error {
		p, err := session.PurchaseBicycle(c.UserContext(), c.Params("id"), requestParam(c, "bicycle_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Bicycle purchased successfully",
			"player":  p,
		})
	})

	// 🎯 Mission lifecycle
	player.Post("/:id/mission/start", func(c *fiber.Ctx) error {
		if _, err := session.StartMission(c.UserContext(), c.Params("id"), requestParam(c, "mission_id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Mission started successfully"})
	})

	player.Post("/:id/mission/complete", func(c *fiber.Ctx) error {
		rewards, err := session.CompleteMission(c.UserContext(), c.Params("id"), requestParam(c, "mission_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Mission completed successfully",
			"rewards": rewards,
		})
	})

	player.Post("/:id/mission/abandon", func(c *fiber.Ctx) error {
		if _, err := session.AbandonMission(c.UserContext(), c.Params("id"), requestParam(c, "mission_id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Mission abandoned"})
	})
}

func parseCoordinate(c *fiber.Ctx, key string) (float64, error) {
	raw := requestParam(c, key)
	if raw == "" {
		return 0, services.InvalidArgument("%s is required", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, services.InvalidArgument("%s must be a number", key)
	}
	return v, nil
}
