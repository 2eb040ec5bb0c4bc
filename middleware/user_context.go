package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the participant identity and roles set by
// the Gateway. The identity is an opaque chat handle already authenticated
// on the gateway side; this service trusts it as-is.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := c.Get("X-User-ID")
		if identity == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		if rolesStr := c.Get("X-User-Roles"); rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals("user_id", identity)
		c.Locals("user_roles", roles)
		return c.Next()
	}
}
