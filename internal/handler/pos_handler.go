package handler

import (
	"ticketops-web/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

// POSHandler triggers an on-demand sync of unsynced purchases to the
// point-of-sale webhook. The periodic schedule in the worker covers the
// normal case; this endpoint exists for operators who do not want to wait.
type POSHandler struct {
	asynqClient *asynq.Client
}

func NewPOSHandler(asynqClient *asynq.Client) *POSHandler {
	return &POSHandler{asynqClient: asynqClient}
}

func (h *POSHandler) TriggerSync(c *fiber.Ctx) error {
	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background job processing is not available (Redis not connected)", nil)
	}

	task := asynq.NewTask("pos:sync", nil)
	info, err := h.asynqClient.Enqueue(task, asynq.Queue("low"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue POS sync task", err)
	}

	return utils.SuccessResponse(c, "POS sync queued", fiber.Map{
		"job_id": info.ID,
	})
}
