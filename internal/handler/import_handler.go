package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ticketops-web/internal/config"
	"ticketops-web/internal/models"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/service"
	"ticketops-web/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// ImportHandler drives the email-receipt reconciliation import.
type ImportHandler struct {
	importRepo    *repository.ImportRepository
	purchaseRepo  *repository.PurchaseRepository
	importService *service.ImportService
	asynqClient   *asynq.Client
	redis         *redis.Client
	cfg           *config.Config
}

func NewImportHandler(
	importRepo *repository.ImportRepository,
	purchaseRepo *repository.PurchaseRepository,
	importService *service.ImportService,
	asynqClient *asynq.Client,
	redisClient *redis.Client,
	cfg *config.Config,
) *ImportHandler {
	return &ImportHandler{
		importRepo:    importRepo,
		purchaseRepo:  purchaseRepo,
		importService: importService,
		asynqClient:   asynqClient,
		redis:         redisClient,
		cfg:           cfg,
	}
}

// UploadReceipts saves the receipt export, creates a session and runs the
// import synchronously, returning the full result payload.
func (h *ImportHandler) UploadReceipts(c *fiber.Ctx) error {
	session, raw, errResp := h.saveUpload(c)
	if errResp != nil {
		return errResp
	}

	h.importRepo.UpdateSessionStatus(session.ID, "processing", "")

	result, err := h.importService.ImportReceipts(raw, &session.ID)
	if err != nil {
		h.importRepo.UpdateSessionStatus(session.ID, "failed", err.Error())
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Import failed", err)
	}

	session.TotalRows = result.Summary.PurchasesCreated + result.Summary.PurchasesSkipped + len(result.Errors)
	session.PurchasesCreated = result.Summary.PurchasesCreated
	session.PurchasesSkipped = result.Summary.PurchasesSkipped
	session.FailedRows = len(result.Errors)
	session.Status = "completed"
	if err := h.importRepo.UpdateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session", err)
	}

	return utils.SuccessResponse(c, "Import completed", fiber.Map{
		"session": session,
		"result":  result,
	})
}

// UploadReceiptsAsync saves the file and queues the import as a background
// task. Progress is polled via GetProgress.
func (h *ImportHandler) UploadReceiptsAsync(c *fiber.Ctx) error {
	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background job processing is not available (Redis not connected)", nil)
	}

	session, _, errResp := h.saveUpload(c)
	if errResp != nil {
		return errResp
	}

	payload, _ := json.Marshal(fiber.Map{
		"session_id":   session.ID,
		"session_code": session.SessionCode,
	})

	task := asynq.NewTask("receipt:import", payload)
	info, err := h.asynqClient.Enqueue(task)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue import task", err)
	}

	return utils.SuccessResponse(c, "Import queued", fiber.Map{
		"job_id":  info.ID,
		"session": session,
	})
}

func (h *ImportHandler) saveUpload(c *fiber.Ctx) (*models.ImportSession, string, error) {
	userID := c.Locals("user_id").(int)

	file, err := c.FormFile("file")
	if err != nil {
		return nil, "", utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".csv" && ext != ".tsv" && ext != ".txt" {
		return nil, "", utils.ErrorResponse(c, fiber.StatusBadRequest, "Only receipt exports (.csv, .tsv, .txt) are allowed", nil)
	}

	if file.Size > int64(h.cfg.UploadMaxSize) {
		return nil, "", utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	sessionCode := fmt.Sprintf("IMPORT-%s", uuid.New().String()[:8])
	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", sessionCode, ext))
	if err := c.SaveFile(file, filePath); err != nil {
		return nil, "", utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read file", err)
	}

	session := &models.ImportSession{
		SessionCode: sessionCode,
		UserID:      userID,
		Filename:    file.Filename,
		FilePath:    filePath,
		Status:      "uploaded",
	}
	if err := h.importRepo.CreateSession(session); err != nil {
		return nil, "", utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create import session", err)
	}

	return session, string(raw), nil
}

func (h *ImportHandler) GetSessions(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	sessions, total, err := h.importRepo.GetSessions(params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve sessions", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"sessions":   sessions,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Sessions retrieved successfully", responseData, pagination)
}

func (h *ImportHandler) GetSessionDetail(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid session ID", err)
	}

	session, err := h.importRepo.GetSessionByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve session", err)
	}
	if session == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Session not found", nil)
	}

	return utils.SuccessResponse(c, "Session retrieved successfully", session)
}

// GetProgress returns the latest progress payload written by the background
// import task.
func (h *ImportHandler) GetProgress(c *fiber.Ctx) error {
	if h.redis == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Progress tracking is not available (Redis not connected)", nil)
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid session ID", err)
	}

	progressKey := fmt.Sprintf("import:progress:%d", id)
	val, err := h.redis.Get(context.Background(), progressKey).Result()
	if err == redis.Nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No progress recorded for this session", nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read progress", err)
	}

	var progress models.ImportProgress
	if err := json.Unmarshal([]byte(val), &progress); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to decode progress", err)
	}

	return utils.SuccessResponse(c, "Progress retrieved successfully", progress)
}

func (h *ImportHandler) GetConflicts(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	status := c.Query("status")

	conflicts, total, err := h.importRepo.GetConflicts(params.Limit, offset, status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve conflicts", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"conflicts":  conflicts,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Conflicts retrieved successfully", responseData, pagination)
}

// ResolveConflict closes a card conflict. Action "resolve" optionally sets
// the card on the conflicted purchase; "dismiss" just closes it.
func (h *ImportHandler) ResolveConflict(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid conflict ID", err)
	}

	var req struct {
		Action string `json:"action"`
		CardID *int64 `json:"card_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Action != "resolve" && req.Action != "dismiss" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Action must be resolve or dismiss", nil)
	}

	conflict, err := h.importRepo.GetConflictByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve conflict", err)
	}
	if conflict == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Conflict not found", nil)
	}
	if conflict.Status != "open" {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Conflict is already closed", nil)
	}

	if req.Action == "resolve" && req.CardID != nil && conflict.PurchaseID != nil {
		purchase, err := h.purchaseRepo.FindByID(*conflict.PurchaseID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve purchase", err)
		}
		if purchase != nil {
			purchase.CardID = req.CardID
			if err := h.purchaseRepo.Update(purchase); err != nil {
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update purchase", err)
			}
		}
	}

	status := "resolved"
	if req.Action == "dismiss" {
		status = "dismissed"
	}
	if err := h.importRepo.ResolveConflict(id, status); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve conflict", err)
	}

	return utils.SuccessResponse(c, "Conflict "+status, nil)
}
