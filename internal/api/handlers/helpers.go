package handlers

import "github.com/gofiber/fiber/v2"

func GetUserID(c *fiber.Ctx) int64 {
	return int64(c.QueryInt("user_id", 0))
}
