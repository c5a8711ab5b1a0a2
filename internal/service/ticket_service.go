package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ericlong128/reimbursement-service/internal/domain"
	"github.com/ericlong128/reimbursement-service/internal/events"
	"github.com/ericlong128/reimbursement-service/internal/repository"
	apperrors "github.com/ericlong128/reimbursement-service/pkg/util"
)

// ticketIDPrefix distinguishes ticket ids from other entity ids when they
// share a keyspace.
const ticketIDPrefix = "TICKET#"

// TicketService governs the ticket lifecycle: creation, status listings and
// the single Pending -> Approved/Denied transition.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes a ticket submission payload.
type TicketCreateInput struct {
	Description string
	Amount      float64
	Type        string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create persists a new ticket for the author. Description and amount are
// validated by the boundary; the type defaults to "Other" when absent.
func (s *TicketService) Create(ctx context.Context, authorID string, input TicketCreateInput) (*domain.Ticket, error) {
	ticketType := strings.TrimSpace(input.Type)
	if ticketType == "" {
		ticketType = domain.DefaultTicketType
	}

	ticket := &domain.Ticket{
		TicketID:    generateTicketID(),
		UserID:      authorID,
		Description: input.Description,
		Amount:      input.Amount,
		Type:        ticketType,
		Status:      domain.TicketStatusPending,
		Created:     time.Now().UTC(),
		Version:     1,
	}

	if err := s.tickets.Put(ctx, ticket); err != nil {
		s.logger.Error("failed to submit ticket", zap.Error(err))
		return nil, apperrors.NewRetrievalFailure("Failed to submit ticket")
	}

	s.logger.Info("ticket submitted",
		zap.String("ticket_id", ticket.TicketID),
		zap.String("user_id", ticket.UserID))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventTicketCreated,
		ActorID: authorID,
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.TicketID,
			Type:     ticket.Type,
			Amount:   ticket.Amount,
		},
	})
	return ticket, nil
}

// ListByAuthor returns all tickets owned by userID. An empty result and a
// store failure share the same retrievable-failure outcome at the boundary;
// the store cause is logged distinctly.
func (s *TicketService) ListByAuthor(ctx context.Context, userID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByAuthor(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get tickets", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.NewRetrievalFailure("Failed to get tickets - not found")
	}
	if len(tickets) == 0 {
		s.logger.Error("failed to get tickets - not found", zap.String("user_id", userID))
		return nil, apperrors.NewRetrievalFailure("Failed to get tickets - not found")
	}
	s.logger.Info("tickets retrieved", zap.String("user_id", userID), zap.Int("count", len(tickets)))
	return tickets, nil
}

// ListByStatus returns tickets with the given status, excluding those the
// requester authored. Only managers may call it; the authorization check
// runs before the store is touched and takes precedence over not-found.
func (s *TicketService) ListByStatus(ctx context.Context, requesterID string, role domain.Role, status domain.TicketStatus) ([]domain.Ticket, error) {
	if role != domain.RoleManager {
		s.logger.Error("unauthorized status listing", zap.String("user_id", requesterID))
		return nil, apperrors.NewForbidden("Unauthorized")
	}

	tickets, err := s.tickets.ListByStatus(ctx, status)
	if err != nil {
		s.logger.Error("failed to list tickets by status", zap.String("status", string(status)), zap.Error(err))
		return nil, apperrors.NewNotFound("No tickets were found with status: "+string(status), nil)
	}

	filtered := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.UserID == requesterID {
			continue
		}
		filtered = append(filtered, ticket)
	}
	if len(filtered) == 0 {
		s.logger.Error("no tickets found with status", zap.String("status", string(status)))
		return nil, apperrors.NewNotFound("No tickets were found with status: "+string(status), nil)
	}

	s.logger.Info("tickets retrieved", zap.String("status", string(status)), zap.Int("count", len(filtered)))
	return filtered, nil
}

// GetByID fetches a single ticket, used as the pre-check before a transition.
func (s *TicketService) GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		s.logger.Error("failed to retrieve ticket", zap.String("ticket_id", ticketID), zap.Error(err))
		return nil, apperrors.NewNotFound("Failed to retrieve ticket", nil)
	}
	if ticket == nil {
		s.logger.Error("ticket not found", zap.String("ticket_id", ticketID))
		return nil, apperrors.NewNotFound("Failed to retrieve ticket", nil)
	}
	return ticket, nil
}

// Transition moves a freshly-fetched Pending ticket to Approved or Denied,
// exactly once. The write is guarded by the version read with the ticket, so
// a concurrent transition surfaces as a conflict instead of a silent
// overwrite.
func (s *TicketService) Transition(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidTransitionTarget(newStatus) || ticket.Status != domain.TicketStatusPending {
		return nil, apperrors.NewValidationError("invalid status transition", nil)
	}

	updated, err := s.tickets.UpdateStatus(ctx, ticket.TicketID, newStatus, ticket.Version)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.logger.Error("ticket transition lost a concurrent update", zap.String("ticket_id", ticket.TicketID))
			return nil, apperrors.NewConflict("Ticket was updated concurrently", nil)
		}
		s.logger.Error("failed to update ticket", zap.String("ticket_id", ticket.TicketID), zap.Error(err))
		return nil, apperrors.NewNotFound("Failed to update ticket - not found", nil)
	}

	s.logger.Info("ticket status updated",
		zap.String("ticket_id", updated.TicketID),
		zap.String("status", string(updated.Status)))
	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketStatusChanged,
		Payload: events.TicketStatusChangedPayload{
			TicketID:  updated.TicketID,
			OldStatus: ticket.Status,
			NewStatus: updated.Status,
		},
	})
	return updated, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketID() string {
	return ticketIDPrefix + uuid.NewString()
}
