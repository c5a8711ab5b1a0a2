package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ericlong128/reimbursement-service/internal/api/dto"
	"github.com/ericlong128/reimbursement-service/internal/auth"
	"github.com/ericlong128/reimbursement-service/internal/domain"
	"github.com/ericlong128/reimbursement-service/internal/service"
	apperrors "github.com/ericlong128/reimbursement-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request.", nil)
	}
	if req.Description == "" || req.Amount == nil {
		return apperrors.NewValidationError("Invalid request.", nil)
	}

	ticket, err := h.service.Create(c.Context(), principal.UserID, service.TicketCreateInput{
		Description: req.Description,
		Amount:      *req.Amount,
		Type:        req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Ticket submitted",
		"ticket":  ticketResponse(ticket),
	})
}

// ListTickets GET /tickets lists the caller's own tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListByAuthor(c.Context(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Tickets retrieved",
		"tickets": ticketResponses(tickets),
	})
}

// ListByStatus GET /tickets/:status is the manager-only cross-user view.
func (h *TicketsHandler) ListByStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	status := c.Params("status")
	if status == "" {
		status = string(domain.TicketStatusPending)
	}

	tickets, err := h.service.ListByStatus(c.Context(), principal.UserID, principal.Role, domain.TicketStatus(status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Tickets retrieved",
		"tickets": ticketResponses(tickets),
	})
}

// UpdateTicket PUT /tickets/update performs the Pending -> Approved/Denied
// transition. The current status is validated against a fresh read, never
// the client's claim.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid update request", nil)
	}
	newStatus := domain.TicketStatus(req.Status)
	if req.TicketID == "" || !domain.ValidTransitionTarget(newStatus) {
		return apperrors.NewValidationError("Invalid update request", nil)
	}

	ticket, err := h.service.GetByID(c.Context(), req.TicketID)
	if err != nil {
		return apperrors.NewValidationError("Invalid request", nil)
	}
	if ticket.Status != domain.TicketStatusPending {
		return apperrors.NewValidationError("Invalid request", nil)
	}

	updated, err := h.service.Transition(c.Context(), ticket, newStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Ticket status updated",
		"ticket":  ticketResponse(updated),
	})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		TicketID:    ticket.TicketID,
		UserID:      ticket.UserID,
		Description: ticket.Description,
		Amount:      ticket.Amount,
		Type:        ticket.Type,
		Status:      ticket.Status,
		Created:     ticket.Created,
	}
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}
