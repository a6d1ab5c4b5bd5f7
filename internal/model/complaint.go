package model

import "time"

// ComplaintStatus is the state of a support ticket.
type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "OPEN"
	ComplaintInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintResolved   ComplaintStatus = "RESOLVED"
)

// CanTransitionTo reports whether a complaint may move from s to next.
// Resolution is also allowed straight from OPEN for trivial tickets.
func (s ComplaintStatus) CanTransitionTo(next ComplaintStatus) bool {
	switch s {
	case ComplaintOpen:
		return next == ComplaintInProgress || next == ComplaintResolved
	case ComplaintInProgress:
		return next == ComplaintResolved
	}
	return false
}

// Complaint priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Complaint is a customer support ticket, optionally assigned to an agent.
type Complaint struct {
	ID          uint64          // complaints.id
	UserID      uint64          // complaints.user_id
	AgentID     *uint64         // complaints.agent_id (nullable until assigned)
	Subject     string          // complaints.subject
	Description string          // complaints.description
	Status      ComplaintStatus // complaints.status
	Priority    string          // complaints.priority
	CreatedAt   time.Time       // complaints.created_at
	UpdatedAt   time.Time       // complaints.updated_at
}
