package dto

import (
	"time"

	"github.com/ericlong128/reimbursement-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Type        string   `json:"type"`
}

// UpdateTicketRequest payload for status transitions.
type UpdateTicketRequest struct {
	TicketID string `json:"ticket_id"`
	Status   string `json:"status"`
}

// TicketResponse mirrors the stored ticket shape.
type TicketResponse struct {
	TicketID    string              `json:"ticket_id"`
	UserID      string              `json:"user_id"`
	Description string              `json:"description"`
	Amount      float64             `json:"amount"`
	Type        string              `json:"type"`
	Status      domain.TicketStatus `json:"status"`
	Created     time.Time           `json:"created"`
}
