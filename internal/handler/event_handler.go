package handler

import (
	"strconv"
	"time"

	"ticketops-web/internal/models"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	eventRepo *repository.EventRepository
}

func NewEventHandler(eventRepo *repository.EventRepository) *EventHandler {
	return &EventHandler{
		eventRepo: eventRepo,
	}
}

func (h *EventHandler) GetEvents(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	events, total, err := h.eventRepo.FindAll(params.Limit, offset, params.Search)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve events", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"events":     events,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Events retrieved successfully", responseData, pagination)
}

func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", err)
	}

	event, err := h.eventRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve event", err)
	}
	if event == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Event not found", nil)
	}

	return utils.SuccessResponse(c, "Event retrieved successfully", event)
}

func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var req models.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Event name is required", nil)
	}

	event := &models.Event{
		TmEventID: req.TmEventID,
		Name:      req.Name,
		Artist:    req.Artist,
		Venue:     req.Venue,
		RawDate:   req.RawDate,
		EventDate: parseEventDateParam(req.RawDate),
	}

	if err := h.eventRepo.Create(event); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create event", err)
	}

	return utils.SuccessResponse(c, "Event created successfully", event)
}

func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", err)
	}

	var req models.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Event name is required", nil)
	}

	event, err := h.eventRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve event", err)
	}
	if event == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Event not found", nil)
	}

	event.TmEventID = req.TmEventID
	event.Name = req.Name
	event.Artist = req.Artist
	event.Venue = req.Venue
	event.RawDate = req.RawDate
	event.EventDate = parseEventDateParam(req.RawDate)

	if err := h.eventRepo.Update(event); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update event", err)
	}

	return utils.SuccessResponse(c, "Event updated successfully", event)
}

func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", err)
	}

	if err := h.eventRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete event", err)
	}

	return utils.SuccessResponse(c, "Event deleted successfully", nil)
}

// SyncEvents upserts a batch of events fetched from the ticketing system by
// the external sync job. Events are keyed by their ticketing-system id.
func (h *EventHandler) SyncEvents(c *fiber.Ctx) error {
	var reqs []models.EventRequest
	if err := c.BodyParser(&reqs); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	synced := 0
	skipped := 0
	for i := range reqs {
		req := &reqs[i]
		if req.TmEventID == "" || req.Name == "" {
			skipped++
			continue
		}

		event := &models.Event{
			TmEventID: req.TmEventID,
			Name:      req.Name,
			Artist:    req.Artist,
			Venue:     req.Venue,
			RawDate:   req.RawDate,
			EventDate: parseEventDateParam(req.RawDate),
		}
		if err := h.eventRepo.UpsertByTmEventID(event); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to sync events", err)
		}
		synced++
	}

	return utils.SuccessResponse(c, "Events synced successfully", fiber.Map{
		"synced":  synced,
		"skipped": skipped,
	})
}

// parseEventDateParam accepts the formats the sync job and operators send.
// An unparseable date stays nil; matching then falls back to the raw string.
func parseEventDateParam(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	layouts := []string{"2006-01-02", "Jan 2, 2006", "January 2, 2006", "Jan 2 2006"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
