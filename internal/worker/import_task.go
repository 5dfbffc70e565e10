package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"ticketops-web/internal/config"
	"ticketops-web/internal/models"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/service"
	"ticketops-web/internal/utils"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// ImportTaskHandler runs a queued receipt import and publishes progress to
// Redis for HTTP polling.
type ImportTaskHandler struct {
	redis         *redis.Client
	cfg           *config.Config
	importRepo    *repository.ImportRepository
	importService *service.ImportService
}

func NewImportTaskHandler(db *sqlx.DB, redisClient *redis.Client, cfg *config.Config) *ImportTaskHandler {
	accountRepo := repository.NewAccountRepository(db)
	cardRepo := repository.NewCardRepository(db)
	eventRepo := repository.NewEventRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	importRepo := repository.NewImportRepository(db)

	poService := service.NewPOService(purchaseRepo)
	importService := service.NewImportService(
		accountRepo, eventRepo, cardRepo, purchaseRepo, importRepo,
		poService, cfg.CADToUSDRate, utils.GetLogger(),
	)

	return &ImportTaskHandler{
		redis:         redisClient,
		cfg:           cfg,
		importRepo:    importRepo,
		importService: importService,
	}
}

type ImportTaskPayload struct {
	SessionID   int64  `json:"session_id"`
	SessionCode string `json:"session_code"`
}

func (h *ImportTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ImportTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.Printf("Starting import for session %s (ID: %d)", payload.SessionCode, payload.SessionID)

	session, err := h.importRepo.GetSessionByID(payload.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		log.Printf("Session %s no longer exists, skipping import", payload.SessionCode)
		return nil
	}

	if session.Status == "completed" || session.Status == "failed" {
		log.Printf("Session %s is already %s, skipping import", payload.SessionCode, session.Status)
		return nil
	}

	raw, err := os.ReadFile(session.FilePath)
	if err != nil {
		h.importRepo.UpdateSessionStatus(session.ID, "failed", err.Error())
		return fmt.Errorf("failed to read receipt file: %w", err)
	}

	if err := h.importRepo.UpdateSessionStatus(session.ID, "processing", ""); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	progressKey := fmt.Sprintf("import:progress:%d", session.ID)
	publish := func(p models.ImportProgress) {
		data, err := json.Marshal(p)
		if err != nil {
			return
		}
		h.redis.Set(ctx, progressKey, data, 24*time.Hour)
	}

	result, err := h.importService.ImportReceiptsWithProgress(string(raw), &session.ID, publish)
	if err != nil {
		h.importRepo.UpdateSessionStatus(session.ID, "failed", err.Error())
		return fmt.Errorf("import failed: %w", err)
	}

	session.TotalRows = result.Summary.PurchasesCreated + result.Summary.PurchasesSkipped + len(result.Errors)
	session.PurchasesCreated = result.Summary.PurchasesCreated
	session.PurchasesSkipped = result.Summary.PurchasesSkipped
	session.FailedRows = len(result.Errors)
	session.Status = "completed"
	session.ErrorMessage = ""
	if err := h.importRepo.UpdateSession(session); err != nil {
		log.Printf("Failed to update session counters: %v", err)
	}

	log.Printf("Import completed for session %s. Created: %d, Skipped: %d, Failed: %d",
		payload.SessionCode, result.Summary.PurchasesCreated,
		result.Summary.PurchasesSkipped, len(result.Errors))

	return nil
}
