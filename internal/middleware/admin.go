package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// AdminMiddleware checks if the authenticated user holds the admin role.
// The first registered user is created with role "admin".
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(string)
		if !ok || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		role, ok := c.Locals("user_role").(string)
		if !ok || role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}

		c.Locals("is_admin", true)
		return c.Next()
	}
}
