package handler

import (
	"strconv"

	"ticketops-web/internal/models"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	accountRepo *repository.AccountRepository
}

func NewAccountHandler(accountRepo *repository.AccountRepository) *AccountHandler {
	return &AccountHandler{
		accountRepo: accountRepo,
	}
}

func (h *AccountHandler) GetAccounts(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	status := c.Query("status")

	accounts, total, err := h.accountRepo.FindAll(params.Limit, offset, params.Search, status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve accounts", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"accounts":   accounts,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Accounts retrieved successfully", responseData, pagination)
}

func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	account, err := h.accountRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve account", err)
	}
	if account == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	return utils.SuccessResponse(c, "Account retrieved successfully", account)
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req models.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Email == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Email is required", nil)
	}

	existing, err := h.accountRepo.FindByEmail(req.Email)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check existing account", err)
	}
	if existing != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Account with this email already exists", nil)
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	account := &models.Account{
		Email:    req.Email,
		Password: req.Password,
		Status:   status,
		Notes:    req.Notes,
	}

	if err := h.accountRepo.Create(account); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create account", err)
	}

	return utils.SuccessResponse(c, "Account created successfully", account)
}

func (h *AccountHandler) UpdateAccount(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	var req models.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Email == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Email is required", nil)
	}

	account, err := h.accountRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve account", err)
	}
	if account == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	account.Email = req.Email
	if req.Password != "" {
		account.Password = req.Password
	}
	if req.Status != "" {
		account.Status = req.Status
	}
	account.Notes = req.Notes

	if err := h.accountRepo.Update(account); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update account", err)
	}

	return utils.SuccessResponse(c, "Account updated successfully", account)
}

func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	if err := h.accountRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete account", err)
	}

	return utils.SuccessResponse(c, "Account deleted successfully", nil)
}

type bulkStatusRequest struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status"`
}

func (h *AccountHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	var req bulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if len(req.IDs) == 0 || req.Status == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "IDs and status are required", nil)
	}

	affected, err := h.accountRepo.BulkUpdateStatus(req.IDs, req.Status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update accounts", err)
	}

	return utils.SuccessResponse(c, "Accounts updated successfully", fiber.Map{
		"updated": affected,
	})
}
