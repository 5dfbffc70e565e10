package handler

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"ticketops-web/internal/models"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/service"
	"ticketops-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	purchaseRepo *repository.PurchaseRepository
	poService    *service.POService
	excelService *service.ExcelService
}

func NewPurchaseHandler(purchaseRepo *repository.PurchaseRepository) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseRepo: purchaseRepo,
		poService:    service.NewPOService(purchaseRepo),
		excelService: service.NewExcelService(),
	}
}

func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	status := c.Query("status")

	purchases, total, err := h.purchaseRepo.FindAll(params.Limit, offset, params.Search, status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve purchases", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"purchases":  purchases,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Purchases retrieved successfully", responseData, pagination)
}

func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid purchase ID", err)
	}

	purchase, err := h.purchaseRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve purchase", err)
	}
	if purchase == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Purchase not found", nil)
	}

	return utils.SuccessResponse(c, "Purchase retrieved successfully", purchase)
}

func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var req models.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.AccountID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Account ID is required", nil)
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	status := req.Status
	if status == "" {
		status = "pending"
	}

	purchase := &models.Purchase{
		AccountID:      req.AccountID,
		EventID:        req.EventID,
		CardID:         req.CardID,
		TmOrderNumber:  req.TmOrderNumber,
		Quantity:       quantity,
		TotalPrice:     req.TotalPrice,
		PricePerTicket: req.TotalPrice / float64(quantity),
		Section:        req.Section,
		Row:            req.Row,
		Seats:          req.Seats,
		Status:         status,
	}

	if err := h.purchaseRepo.Create(purchase); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create purchase", err)
	}

	if err := h.poService.Assign(purchase); err != nil {
		// The purchase stands; the PO number can be assigned later.
		return utils.SuccessResponse(c, "Purchase created without PO number", purchase)
	}

	return utils.SuccessResponse(c, "Purchase created successfully", purchase)
}

func (h *PurchaseHandler) UpdatePurchase(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid purchase ID", err)
	}

	var req models.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	purchase, err := h.purchaseRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve purchase", err)
	}
	if purchase == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Purchase not found", nil)
	}

	if req.AccountID != 0 {
		purchase.AccountID = req.AccountID
	}
	purchase.EventID = req.EventID
	purchase.CardID = req.CardID
	purchase.TmOrderNumber = req.TmOrderNumber
	if req.Quantity > 0 {
		purchase.Quantity = req.Quantity
	}
	purchase.TotalPrice = req.TotalPrice
	purchase.PricePerTicket = req.TotalPrice / float64(purchase.Quantity)
	purchase.Section = req.Section
	purchase.Row = req.Row
	purchase.Seats = req.Seats
	if req.Status != "" {
		purchase.Status = req.Status
	}

	if err := h.purchaseRepo.Update(purchase); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update purchase", err)
	}

	return utils.SuccessResponse(c, "Purchase updated successfully", purchase)
}

func (h *PurchaseHandler) DeletePurchase(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid purchase ID", err)
	}

	if err := h.purchaseRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete purchase", err)
	}

	return utils.SuccessResponse(c, "Purchase deleted successfully", nil)
}

func (h *PurchaseHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	var req bulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if len(req.IDs) == 0 || req.Status == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "IDs and status are required", nil)
	}

	affected, err := h.purchaseRepo.BulkUpdateStatus(req.IDs, req.Status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update purchases", err)
	}

	return utils.SuccessResponse(c, "Purchases updated successfully", fiber.Map{
		"updated": affected,
	})
}

func (h *PurchaseHandler) ExportPurchases(c *fiber.Ctx) error {
	status := c.Query("status")

	purchases, _, err := h.purchaseRepo.FindAll(1000000, 0, "", status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve purchases", err)
	}

	exportFileName := fmt.Sprintf("purchases_%s.xlsx", time.Now().Format("20060102_150405"))
	exportPath := filepath.Join("./storage/exports", exportFileName)

	if err := h.excelService.ExportPurchases(purchases, exportPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export purchases", err)
	}

	return c.Download(exportPath, exportFileName)
}
