package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

// RequireStaff ensures an authenticated staff session and returns JSON 401 otherwise.
func RequireStaff(c *fiber.Ctx) error {
	if !staffcontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

// RequireOwner ensures the authenticated staff holds the owner role.
func RequireOwner(c *fiber.Ctx) error {
	ctx := staffcontext.Get(c)
	if !ctx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if ctx.Role != "owner" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "owner role required",
		})
	}
	return c.Next()
}
