package handlers

import "github.com/gofiber/fiber/v2"

// HealthHandler answers without touching the store.
func HealthHandler(router fiber.Router) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
