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

type ListingHandler struct {
	listingRepo  *repository.ListingRepository
	purchaseRepo *repository.PurchaseRepository
	excelService *service.ExcelService
}

func NewListingHandler(listingRepo *repository.ListingRepository, purchaseRepo *repository.PurchaseRepository) *ListingHandler {
	return &ListingHandler{
		listingRepo:  listingRepo,
		purchaseRepo: purchaseRepo,
		excelService: service.NewExcelService(),
	}
}

func (h *ListingHandler) GetListings(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	status := c.Query("status")

	listings, total, err := h.listingRepo.FindAll(params.Limit, offset, status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve listings", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"listings":   listings,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Listings retrieved successfully", responseData, pagination)
}

func (h *ListingHandler) GetListing(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing ID", err)
	}

	listing, err := h.listingRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve listing", err)
	}
	if listing == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Listing not found", nil)
	}

	return utils.SuccessResponse(c, "Listing retrieved successfully", listing)
}

func (h *ListingHandler) CreateListing(c *fiber.Ctx) error {
	var req models.ListingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.PurchaseID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Purchase ID is required", nil)
	}

	purchase, err := h.purchaseRepo.FindByID(req.PurchaseID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve purchase", err)
	}
	if purchase == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Purchase not found", nil)
	}

	status := req.Status
	if status == "" {
		status = "listed"
	}

	listing := &models.Listing{
		PurchaseID:  req.PurchaseID,
		Marketplace: req.Marketplace,
		AskingPrice: req.AskingPrice,
		Status:      status,
	}

	if err := h.listingRepo.Create(listing); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create listing", err)
	}

	return utils.SuccessResponse(c, "Listing created successfully", listing)
}

func (h *ListingHandler) UpdateListing(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing ID", err)
	}

	var req models.ListingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	listing, err := h.listingRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve listing", err)
	}
	if listing == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Listing not found", nil)
	}

	listing.Marketplace = req.Marketplace
	listing.AskingPrice = req.AskingPrice
	if req.Status != "" {
		listing.Status = req.Status
	}

	if err := h.listingRepo.Update(listing); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update listing", err)
	}

	return utils.SuccessResponse(c, "Listing updated successfully", listing)
}

func (h *ListingHandler) DeleteListing(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing ID", err)
	}

	if err := h.listingRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete listing", err)
	}

	return utils.SuccessResponse(c, "Listing deleted successfully", nil)
}

func (h *ListingHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	var req bulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if len(req.IDs) == 0 || req.Status == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "IDs and status are required", nil)
	}

	affected, err := h.listingRepo.BulkUpdateStatus(req.IDs, req.Status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update listings", err)
	}

	return utils.SuccessResponse(c, "Listings updated successfully", fiber.Map{
		"updated": affected,
	})
}

func (h *ListingHandler) GetInvoices(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	status := c.Query("status")

	invoices, total, err := h.listingRepo.FindInvoices(params.Limit, offset, status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve invoices", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"invoices":   invoices,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Invoices retrieved successfully", responseData, pagination)
}

func (h *ListingHandler) CreateInvoice(c *fiber.Ctx) error {
	var req models.InvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.ListingID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Listing ID is required", nil)
	}

	listing, err := h.listingRepo.FindByID(req.ListingID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve listing", err)
	}
	if listing == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Listing not found", nil)
	}

	status := req.Status
	if status == "" {
		status = "open"
	}

	invoice := &models.Invoice{
		ListingID: req.ListingID,
		Amount:    req.Amount,
		Fees:      req.Fees,
		Status:    status,
	}

	if err := h.listingRepo.CreateInvoice(invoice); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create invoice", err)
	}

	return utils.SuccessResponse(c, "Invoice created successfully", invoice)
}

func (h *ListingHandler) UpdateInvoiceStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid invoice ID", err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Status == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Status is required", nil)
	}

	if err := h.listingRepo.UpdateInvoiceStatus(id, req.Status); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update invoice", err)
	}

	return utils.SuccessResponse(c, "Invoice updated successfully", nil)
}

func (h *ListingHandler) ExportInvoices(c *fiber.Ctx) error {
	status := c.Query("status")

	invoices, _, err := h.listingRepo.FindInvoices(1000000, 0, status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve invoices", err)
	}

	exportFileName := fmt.Sprintf("invoices_%s.xlsx", time.Now().Format("20060102_150405"))
	exportPath := filepath.Join("./storage/exports", exportFileName)

	if err := h.excelService.ExportInvoices(invoices, exportPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export invoices", err)
	}

	return c.Download(exportPath, exportFileName)
}
