package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ticketops-web/internal/models"
	"ticketops-web/internal/repository"

	"github.com/sirupsen/logrus"
)

// POSSyncService pushes unsynced purchases to the point-of-sale webhook.
// A failing purchase is marked with its sync error and skipped; it never
// aborts the batch.
type POSSyncService struct {
	purchases  *repository.PurchaseRepository
	webhookURL string
	client     *http.Client
	log        *logrus.Logger
}

func NewPOSSyncService(purchases *repository.PurchaseRepository, webhookURL string, log *logrus.Logger) *POSSyncService {
	return &POSSyncService{
		purchases:  purchases,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

type posPayload struct {
	PONumber      string  `json:"po_number"`
	TmOrderNumber string  `json:"tm_order_number"`
	Quantity      int     `json:"quantity"`
	TotalPrice    float64 `json:"total_price"`
	Section       string  `json:"section"`
	Row           string  `json:"row"`
	Seats         string  `json:"seats"`
}

// SyncPending sends up to batch unsynced purchases to the POS system.
func (s *POSSyncService) SyncPending(ctx context.Context, batch int) (synced, failed int, err error) {
	if s.webhookURL == "" {
		return 0, 0, fmt.Errorf("POS webhook URL is not configured")
	}

	purchases, err := s.purchases.GetUnsynced(batch)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load unsynced purchases: %w", err)
	}

	for _, purchase := range purchases {
		if err := s.push(ctx, &purchase); err != nil {
			s.log.WithError(err).Warnf("POS sync failed for purchase %d", purchase.ID)
			if markErr := s.purchases.MarkSyncFailed(purchase.ID, err.Error()); markErr != nil {
				s.log.WithError(markErr).Errorf("failed to record sync error for purchase %d", purchase.ID)
			}
			failed++
			continue
		}
		if err := s.purchases.MarkSynced(purchase.ID); err != nil {
			s.log.WithError(err).Errorf("failed to mark purchase %d synced", purchase.ID)
		}
		synced++
	}

	return synced, failed, nil
}

func (s *POSSyncService) push(ctx context.Context, purchase *models.Purchase) error {
	body, err := json.Marshal(posPayload{
		PONumber:      purchase.PONumber,
		TmOrderNumber: purchase.TmOrderNumber,
		Quantity:      purchase.Quantity,
		TotalPrice:    purchase.TotalPrice,
		Section:       purchase.Section,
		Row:           purchase.Row,
		Seats:         purchase.Seats,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POS returned status %d", resp.StatusCode)
	}
	return nil
}
