package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postpilot/configs"
)

type CronAuthMiddleware struct {
	cfg config.Config
}

func NewCronAuthMiddleware(cfg config.Config) *CronAuthMiddleware {
	return &CronAuthMiddleware{cfg: cfg}
}

// AuthMiddleware guards the headless trigger and API routes with a shared
// secret carried in the X-Cron-Secret header.
func (m *CronAuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.cfg.CronSecret == "" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "trigger secret is not configured",
			})
		}

		provided := c.Get("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.cfg.CronSecret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		return c.Next()
	}
}
