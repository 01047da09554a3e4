package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of real-time event.
type EventType string

const (
	EventStatusChanged EventType = "STATUS_CHANGED"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type     EventType `json:"type"`
	Payload  any       `json:"payload"`
	TicketID uuid.UUID `json:"ticketId"` // room key
}

// StatusChangedPayload describes a status transition pushed to subscribers.
type StatusChangedPayload struct {
	TicketNumber int          `json:"ticketNumber"`
	OldStatus    TicketStatus `json:"oldStatus"`
	NewStatus    TicketStatus `json:"newStatus"`
	Description  string       `json:"description"`
	ChangedBy    uuid.UUID    `json:"changedBy"`
	ChangedAt    time.Time    `json:"changedAt"`
}

// NewStatusChangedEvent builds the event broadcast after a status change.
func NewStatusChangedEvent(t *Ticket, change *ChangeStatus) Event {
	payload := StatusChangedPayload{
		TicketNumber: t.Number,
		OldStatus:    change.OldStatus,
		NewStatus:    change.NewStatus,
		Description:  change.Description,
		ChangedAt:    change.ChangedAt,
	}
	if change.ChangedBy != nil {
		payload.ChangedBy = *change.ChangedBy
	}
	return Event{Type: EventStatusChanged, Payload: payload, TicketID: t.ID}
}
