package handler

import (
	"time"

	"ticketops-web/internal/config"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	purchaseRepo  *repository.PurchaseRepository
	accountRepo   *repository.AccountRepository
	generatorRepo *repository.GeneratorRepository
	importRepo    *repository.ImportRepository
	cfg           *config.Config
}

func NewDashboardHandler(
	purchaseRepo *repository.PurchaseRepository,
	accountRepo *repository.AccountRepository,
	generatorRepo *repository.GeneratorRepository,
	importRepo *repository.ImportRepository,
	cfg *config.Config,
) *DashboardHandler {
	return &DashboardHandler{
		purchaseRepo:  purchaseRepo,
		accountRepo:   accountRepo,
		generatorRepo: generatorRepo,
		importRepo:    importRepo,
		cfg:           cfg,
	}
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	purchaseStats, err := h.purchaseRepo.GetStats()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve purchase stats", err)
	}

	accountCounts, err := h.accountRepo.CountByStatus()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve account stats", err)
	}

	generators, err := h.generatorRepo.GetAll()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve generators", err)
	}

	cutoff := time.Now().Add(-h.cfg.HeartbeatTimeout)
	online := 0
	for _, g := range generators {
		if !g.LastHeartbeat.Before(cutoff) {
			online++
		}
	}

	_, openConflicts, err := h.importRepo.GetConflicts(1, 0, "open")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve conflict stats", err)
	}

	recentSessions, _, err := h.importRepo.GetSessions(5, 0)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve import sessions", err)
	}

	return utils.SuccessResponse(c, "Stats retrieved successfully", fiber.Map{
		"purchases": purchaseStats,
		"accounts":  accountCounts,
		"generators": fiber.Map{
			"total":  len(generators),
			"online": online,
		},
		"open_conflicts":  openConflicts,
		"recent_sessions": recentSessions,
	})
}
