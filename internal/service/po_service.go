package service

import (
	"fmt"
	"strings"

	"ticketops-web/internal/models"
	"ticketops-web/internal/repository"

	"github.com/google/uuid"
)

// POService assigns purchase-order numbers to newly imported purchases.
type POService struct {
	purchases *repository.PurchaseRepository
}

func NewPOService(purchases *repository.PurchaseRepository) *POService {
	return &POService{purchases: purchases}
}

func (s *POService) Assign(purchase *models.Purchase) error {
	poNumber := fmt.Sprintf("PO-%s", strings.ToUpper(uuid.New().String()[:8]))
	if err := s.purchases.AssignPONumber(purchase.ID, poNumber); err != nil {
		return fmt.Errorf("failed to assign PO number: %w", err)
	}
	purchase.PONumber = poNumber
	return nil
}
