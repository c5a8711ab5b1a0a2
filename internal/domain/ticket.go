package domain

import "time"

// TicketStatus enumerates lifecycle states for reimbursement tickets.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "Pending"
	TicketStatusApproved TicketStatus = "Approved"
	TicketStatusDenied   TicketStatus = "Denied"
)

// ValidTransitionTarget reports whether s may be the target of a status
// update. Pending is never a target: once a ticket leaves it, the status is
// terminal.
func ValidTransitionTarget(s TicketStatus) bool {
	return s == TicketStatusApproved || s == TicketStatusDenied
}

// DefaultTicketType is applied when a submission omits the type field.
const DefaultTicketType = "Other"

// Ticket is the aggregate for reimbursement requests.
type Ticket struct {
	TicketID    string
	UserID      string
	Description string
	Amount      float64
	Type        string
	Status      TicketStatus
	Created     time.Time
	Version     int64
}
