package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 5000
)

// TicketStatus is a status name from the configured catalog.
type TicketStatus string

const (
	StatusNew        TicketStatus = "New"
	StatusAssigned   TicketStatus = "Assigned"
	StatusInProgress TicketStatus = "InProgress"
	StatusResolved   TicketStatus = "Resolved"
	StatusClosed     TicketStatus = "Closed"
)

// TicketPriority is a priority name from the configured catalog.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
)

// Ticket is the core domain entity.
type Ticket struct {
	ID          uuid.UUID
	Number      int
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	OwnerID     uuid.UUID
	AssigneeID  *uuid.UUID
	CreatedAt   time.Time

	// Changes is only populated by get-by-id.
	Changes []HistoryEntry
}

// TicketParams carries the caller-supplied fields of a new ticket.
type TicketParams struct {
	Title       string
	Description string
	Priority    TicketPriority
	OwnerID     uuid.UUID
	Number      int
	CreatedAt   time.Time
}

// Validate collects every problem with the params instead of stopping at the first.
func (p TicketParams) Validate(catalog *Catalog) error {
	errs := apperrors.NewValidationErrors()

	title := strings.TrimSpace(p.Title)
	if title == "" {
		errs.Add("title", "Title no information")
	} else if utf8.RuneCountInString(title) > MaxTitleLength {
		errs.Add("title", "Title must be 255 characters or less")
	}
	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		errs.Add("description", "Description must be 5000 characters or less")
	}
	if p.Priority != "" && !catalog.HasPriority(p.Priority) {
		errs.Add("priority", "Priority must be one of: "+strings.Join(catalog.PriorityNames(), ", "))
	}
	if p.OwnerID == uuid.Nil {
		errs.Add("owner", "Owner no information")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewTicket builds a ticket in the catalog's initial status.
func NewTicket(params TicketParams, catalog *Catalog) (*Ticket, error) {
	if err := params.Validate(catalog); err != nil {
		return nil, err
	}

	priority := catalog.CanonicalPriority(params.Priority)
	if priority == "" {
		priority = catalog.DefaultPriority
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &Ticket{
		Number:      params.Number,
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		Status:      catalog.InitialStatus,
		Priority:    priority,
		OwnerID:     params.OwnerID,
		CreatedAt:   createdAt,
	}, nil
}

// TicketUpdate carries the mutable fields of an update request.
type TicketUpdate struct {
	Title       string
	Description string
	Priority    TicketPriority
	AssigneeID  *uuid.UUID
}

// ApplyUpdate returns a copy of t with the mutable fields from u. Number,
// owner, creation date and status are always carried over from t. An
// assignee already set on t is never replaced; otherwise u's assignee is
// taken only when allowAssign is true. An empty priority keeps t's.
func (t *Ticket) ApplyUpdate(u TicketUpdate, allowAssign bool, catalog *Catalog) *Ticket {
	updated := &Ticket{
		ID:          t.ID,
		Number:      t.Number,
		Title:       strings.TrimSpace(u.Title),
		Description: u.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		OwnerID:     t.OwnerID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
	}

	if p := catalog.CanonicalPriority(u.Priority); p != "" {
		updated.Priority = p
	}

	if t.AssigneeID == nil && allowAssign && u.AssigneeID != nil {
		assignee := *u.AssigneeID
		updated.AssigneeID = &assignee
	}

	return updated
}

// StatusCount is one row of the per-status summary.
type StatusCount struct {
	Status TicketStatus
	Count  int64
}
