package worker

import (
	"context"
	"log"

	"ticketops-web/internal/config"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/service"
	"ticketops-web/internal/utils"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
)

// POSSyncTaskHandler pushes unsynced purchases to the point-of-sale webhook.
type POSSyncTaskHandler struct {
	cfg  *config.Config
	sync *service.POSSyncService
}

func NewPOSSyncTaskHandler(db *sqlx.DB, cfg *config.Config) *POSSyncTaskHandler {
	purchaseRepo := repository.NewPurchaseRepository(db)
	return &POSSyncTaskHandler{
		cfg:  cfg,
		sync: service.NewPOSSyncService(purchaseRepo, cfg.POSWebhookURL, utils.GetLogger()),
	}
}

func (h *POSSyncTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	if h.cfg.POSWebhookURL == "" {
		log.Printf("POS webhook URL not configured, skipping sync")
		return nil
	}

	synced, failed, err := h.sync.SyncPending(ctx, h.cfg.POSSyncBatch)
	if err != nil {
		return err
	}

	log.Printf("POS sync finished. Synced: %d, Failed: %d", synced, failed)
	return nil
}
