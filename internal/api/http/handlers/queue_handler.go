package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util/errorutil"
)

// QueueHandler exposes the queue engine over HTTP.
type QueueHandler struct {
	service *service.QueueService
}

// NewQueueHandler constructs handler.
func NewQueueHandler(queueService *service.QueueService) *QueueHandler {
	return &QueueHandler{service: queueService}
}

// IssueTicket POST /api/tickets.
func (h *QueueHandler) IssueTicket(c *fiber.Ctx) error {
	ticket, err := h.service.IssueTicket(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.TicketResponse{
		TicketNumber: ticket.TicketNumber,
		Timestamp:    ticket.IssuedAt,
		Attended:     ticket.Attended,
	})
}

// QueueStatus GET /api/queue/status.
func (h *QueueHandler) QueueStatus(c *fiber.Ctx) error {
	status, err := h.service.QueueStatus(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.QueueStatusResponse{
		WaitingTickets: status.WaitingTickets,
		TotalIssued:    status.TotalIssued,
		HighestTicket:  status.HighestTicket,
	})
}

// CallNext POST /api/queue/call-next.
func (h *QueueHandler) CallNext(c *fiber.Ctx) error {
	called, err := h.service.CallNext(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.CalledTicketResponse{
		CalledTicket:    called.TicketNumber,
		CalledTime:      called.CalledAt,
		WaitTimeSeconds: called.WaitTime.Seconds(),
	})
}

// CurrentlyCalled GET /api/queue/current.
func (h *QueueHandler) CurrentlyCalled(c *fiber.Ctx) error {
	ticket, err := h.service.CurrentlyCalled(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.CurrentlyCalledResponse{}
	if ticket != nil {
		resp.CurrentlyCalled = &ticket.TicketNumber
		resp.CalledAt = &ticket.IssuedAt
	}
	return c.JSON(resp)
}

// TicketHistory GET /api/queue/history?limit=.
func (h *QueueHandler) TicketHistory(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("limit must be a positive integer", nil)
		}
		limit = parsed
	}

	tickets, err := h.service.TicketHistory(c.UserContext(), limit)
	if err != nil {
		return err
	}
	entries := make([]dto.HistoryEntry, 0, len(tickets))
	for _, ticket := range tickets {
		entries = append(entries, dto.HistoryEntry{
			TicketNumber: ticket.TicketNumber,
			CalledAt:     ticket.IssuedAt,
		})
	}
	return c.JSON(entries)
}

// ResetQueue POST /api/queue/reset.
func (h *QueueHandler) ResetQueue(c *fiber.Ctx) error {
	if _, err := h.service.ResetQueue(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(dto.ResetResponse{Success: true})
}
