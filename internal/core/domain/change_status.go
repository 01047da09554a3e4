package domain

import (
	"time"

	"github.com/google/uuid"
)

// InitialStatusNote is the description of the history entry written on create.
const InitialStatusNote = "Ticket created"

// ChangeStatus is one append-only audit record of a status transition.
// OldStatus is empty for the record written when the ticket is created.
type ChangeStatus struct {
	ID          uuid.UUID
	TicketID    uuid.UUID
	OldStatus   TicketStatus
	NewStatus   TicketStatus
	Description string
	ChangedAt   time.Time
	ChangedBy   *uuid.UUID
}

// HistoryEntry is the read view of a ChangeStatus. It does not carry the
// ticket reference.
type HistoryEntry struct {
	ID          uuid.UUID    `json:"id"`
	OldStatus   TicketStatus `json:"oldStatus"`
	NewStatus   TicketStatus `json:"newStatus"`
	Description string       `json:"description"`
	ChangedAt   time.Time    `json:"changedAt"`
	ChangedBy   *uuid.UUID   `json:"changedBy,omitempty"`
}

// Entry projects the record into its read view.
func (c *ChangeStatus) Entry() HistoryEntry {
	return HistoryEntry{
		ID:          c.ID,
		OldStatus:   c.OldStatus,
		NewStatus:   c.NewStatus,
		Description: c.Description,
		ChangedAt:   c.ChangedAt,
		ChangedBy:   c.ChangedBy,
	}
}
