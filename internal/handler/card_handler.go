package handler

import (
	"strconv"

	"ticketops-web/internal/models"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CardHandler struct {
	cardRepo    *repository.CardRepository
	accountRepo *repository.AccountRepository
}

func NewCardHandler(cardRepo *repository.CardRepository, accountRepo *repository.AccountRepository) *CardHandler {
	return &CardHandler{
		cardRepo:    cardRepo,
		accountRepo: accountRepo,
	}
}

func (h *CardHandler) GetCards(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	cards, total, err := h.cardRepo.FindAll(params.Limit, offset, params.Search)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve cards", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"cards":      cards,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Cards retrieved successfully", responseData, pagination)
}

func (h *CardHandler) GetCard(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid card ID", err)
	}

	card, err := h.cardRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve card", err)
	}
	if card == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	return utils.SuccessResponse(c, "Card retrieved successfully", card)
}

func (h *CardHandler) CreateCard(c *fiber.Ctx) error {
	var req models.CardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Number == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Card number is required", nil)
	}

	card := &models.Card{
		Number:   req.Number,
		CardType: req.CardType,
	}

	if err := h.cardRepo.Create(card); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create card", err)
	}

	return utils.SuccessResponse(c, "Card created successfully", card)
}

func (h *CardHandler) UpdateCard(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid card ID", err)
	}

	var req models.CardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	card, err := h.cardRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve card", err)
	}
	if card == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	if req.Number != "" {
		card.Number = req.Number
	}
	card.CardType = req.CardType

	if err := h.cardRepo.Update(card); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update card", err)
	}

	return utils.SuccessResponse(c, "Card updated successfully", card)
}

// LinkCard manually links an unlinked card to an account. Linked cards are
// never relinked here; the operator must delete and recreate instead.
func (h *CardHandler) LinkCard(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid card ID", err)
	}

	var req struct {
		AccountID int64 `json:"account_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	card, err := h.cardRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve card", err)
	}
	if card == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}
	if card.AccountID != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Card is already linked to an account", nil)
	}

	account, err := h.accountRepo.FindByID(req.AccountID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve account", err)
	}
	if account == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	if err := h.cardRepo.LinkAccount(id, req.AccountID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to link card", err)
	}

	card.AccountID = &req.AccountID
	return utils.SuccessResponse(c, "Card linked successfully", card)
}

func (h *CardHandler) DeleteCard(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid card ID", err)
	}

	if err := h.cardRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete card", err)
	}

	return utils.SuccessResponse(c, "Card deleted successfully", nil)
}
