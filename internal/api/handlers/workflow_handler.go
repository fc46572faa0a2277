package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/service"
)

type WorkflowHandler struct {
	ws service.WorkflowService
	ds service.DispatcherService
}

func NewWorkflowHandler(ws service.WorkflowService, ds service.DispatcherService) *WorkflowHandler {
	return &WorkflowHandler{ws: ws, ds: ds}
}

// RunWorkflow executes Trigger A once. Safe to call repeatedly: the ledger
// makes re-runs of an already-executed slot no-ops.
func (h *WorkflowHandler) RunWorkflow(c *fiber.Ctx) error {
	summary, err := h.ws.Run(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

// RunPublish executes Trigger B once. Safe under concurrent invocation: the
// per-post claim is the only guard needed.
func (h *WorkflowHandler) RunPublish(c *fiber.Ctx) error {
	summary, err := h.ds.Run(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
