// handlers/commands.go
package handlers

import (
	"log"

	"wargame-progression-system/middleware"
	"wargame-progression-system/models"
	"wargame-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

// Short replies sent back through the gateway. Internal detail (expected
// flags, store errors) never appears here.
const (
	replyAccepted   = "Amazing!"
	replyRejected   = "You need to work harder!"
	replyOutOfOrder = "Trying to time travel?"
	replyError      = "My back hurts!"
)

func hasAnyRole(roles, allowed []string) bool {
	for _, role := range roles {
		for _, want := range allowed {
			if role == want {
				return true
			}
		}
	}
	return false
}

func replyFor(outcome services.Outcome) string {
	switch outcome {
	case services.Accepted:
		return replyAccepted
	case services.Rejected:
		return replyRejected
	case services.OutOfOrder:
		return replyOutOfOrder
	default:
		return replyError
	}
}

// SetupCommandRoutes wires the submit and scoreboard commands forwarded by
// the gateway. Identity and roles come from the gateway's X-User-ID and
// X-User-Roles headers. When scoreboardRoles is non-empty, the scoreboard
// command is restricted to identities carrying at least one of those roles.
func SetupCommandRoutes(app *fiber.App, submissions *services.SubmissionService, scoreboard *services.ScoreboardService, progressions *services.ProgressionService, scoreboardRoles []string) {
	commands := app.Group("/commands", middleware.UserContextMiddleware())

	commands.Post("/submit", func(c *fiber.Ctx) error {
		identity := c.Locals("user_id").(string)

		type Req struct {
			Wargame string `json:"wargame"`
			Level   int    `json:"level"`
			Flag    string `json:"flag"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
			})
		}

		wargame, err := models.ParseWargame(req.Wargame)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown wargame",
			})
		}

		outcome := submissions.Submit(c.Context(), identity, wargame, req.Level, req.Flag)

		// Submit replies are ephemeral: only the requester sees them.
		return c.JSON(fiber.Map{
			"content":   replyFor(outcome),
			"ephemeral": true,
		})
	})

	commands.Post("/scoreboard", func(c *fiber.Ctx) error {
		identity := c.Locals("user_id").(string)

		if len(scoreboardRoles) > 0 {
			roles, _ := c.Locals("user_roles").([]string)
			if !hasAnyRole(roles, scoreboardRoles) {
				log.Printf("🚫 [SCOREBOARD] %s lacks a scoreboard role (has %v)", identity, roles)
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "scoreboard is restricted",
				})
			}
		}

		type Req struct {
			Wargame string `json:"wargame"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
			})
		}

		wargame, err := models.ParseWargame(req.Wargame)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown wargame",
			})
		}

		// Rows are created lazily on first interaction, and a scoreboard
		// request counts as one. The requester still won't show up on the
		// board at level 0.
		if _, err := progressions.GetOrCreate(c.Context(), identity); err != nil {
			log.Printf("scoreboard: ensuring progression for %s failed: %v", identity, err)
		}

		embed, err := scoreboard.Render(c.Context(), wargame)
		if err != nil {
			log.Printf("scoreboard: rendering %s failed: %v", wargame, err)
			return c.JSON(fiber.Map{
				"content":   replyError,
				"ephemeral": true,
			})
		}

		return c.JSON(fiber.Map{
			"embed":     embed,
			"ephemeral": false,
		})
	})
}
