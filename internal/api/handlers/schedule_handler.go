package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/service"
)

type ScheduleHandler struct {
	s service.PostService
}

func NewScheduleHandler(s service.PostService) *ScheduleHandler {
	return &ScheduleHandler{s: s}
}

// NextRun reports when the user's next deferred post would be scheduled.
func (h *ScheduleHandler) NextRun(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	next, err := h.s.NextRun(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"next_run": next,
	})
}
