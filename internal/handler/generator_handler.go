package handler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ticketops-web/internal/config"
	"ticketops-web/internal/models"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// GeneratorHandler controls the external queue-position generator pool.
type GeneratorHandler struct {
	generatorRepo *repository.GeneratorRepository
	redis         *redis.Client
	cfg           *config.Config
}

func NewGeneratorHandler(generatorRepo *repository.GeneratorRepository, redisClient *redis.Client, cfg *config.Config) *GeneratorHandler {
	return &GeneratorHandler{
		generatorRepo: generatorRepo,
		redis:         redisClient,
		cfg:           cfg,
	}
}

// GetGenerators lists all workers with the offline flag derived from the
// heartbeat age. Offline is reported alongside status, never written back.
func (h *GeneratorHandler) GetGenerators(c *fiber.Ctx) error {
	generators, err := h.generatorRepo.GetAll()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve generators", err)
	}

	cutoff := time.Now().Add(-h.cfg.HeartbeatTimeout)
	statuses := make([]models.GeneratorStatus, 0, len(generators))
	for _, g := range generators {
		statuses = append(statuses, models.GeneratorStatus{
			Generator: g,
			Offline:   g.LastHeartbeat.Before(cutoff),
		})
	}

	return utils.SuccessResponse(c, "Generators retrieved successfully", fiber.Map{
		"generators": statuses,
	})
}

func (h *GeneratorHandler) RegisterGenerator(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Generator name is required", nil)
	}

	if err := h.generatorRepo.Register(req.Name); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to register generator", err)
	}

	generator, err := h.generatorRepo.FindByName(req.Name)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve generator", err)
	}

	return utils.SuccessResponse(c, "Generator registered successfully", generator)
}

func (h *GeneratorHandler) Heartbeat(c *fiber.Ctx) error {
	var req struct {
		Name          string `json:"name"`
		JobsCompleted int    `json:"jobs_completed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Generator name is required", nil)
	}
	if req.JobsCompleted < 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Jobs completed cannot be negative", nil)
	}

	if err := h.generatorRepo.Heartbeat(req.Name, req.JobsCompleted); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Generator not registered", err)
	}

	// Mirror the heartbeat into Redis so the dashboard can poll liveness
	// without hitting MySQL. The key simply expires when the worker stops.
	if h.redis != nil {
		key := fmt.Sprintf("generator:heartbeat:%s", req.Name)
		h.redis.Set(context.Background(), key, time.Now().Format(time.RFC3339), h.cfg.HeartbeatTimeout)
	}

	generator, err := h.generatorRepo.FindByName(req.Name)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve generator", err)
	}

	// A paused worker keeps heartbeating; the response tells it to idle.
	return utils.SuccessResponse(c, "Heartbeat recorded", fiber.Map{
		"status": generator.Status,
	})
}

func (h *GeneratorHandler) PauseGenerator(c *fiber.Ctx) error {
	return h.setStatus(c, "paused", "Generator paused successfully")
}

func (h *GeneratorHandler) ResumeGenerator(c *fiber.Ctx) error {
	return h.setStatus(c, "running", "Generator resumed successfully")
}

func (h *GeneratorHandler) setStatus(c *fiber.Ctx, status, message string) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid generator ID", err)
	}

	if err := h.generatorRepo.UpdateStatus(id, status); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Generator not found", err)
	}

	return utils.SuccessResponse(c, message, nil)
}

func (h *GeneratorHandler) DeleteGenerator(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid generator ID", err)
	}

	if err := h.generatorRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete generator", err)
	}

	return utils.SuccessResponse(c, "Generator deleted successfully", nil)
}
