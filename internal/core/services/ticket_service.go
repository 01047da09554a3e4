package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// TicketServiceDeps groups the collaborators of TicketService. Notifier,
// Broadcaster, Metrics and Logger are optional.
type TicketServiceDeps struct {
	Tickets     ports.TicketRepository
	Recorder    ports.StatusRecorder
	Dispatcher  ports.QueryDispatcher
	Numbers     ports.NumberGenerator
	TxManager   ports.TransactionManager
	Notifier    ports.Notifier
	Broadcaster ports.EventBroadcaster
	Metrics     ports.TicketMetrics
	Catalog     *domain.Catalog
	Logger      *slog.Logger
}

// TicketService implements business logic for ticket management
type TicketService struct {
	ticketRepo  ports.TicketRepository
	recorder    ports.StatusRecorder
	dispatcher  ports.QueryDispatcher
	numbers     ports.NumberGenerator
	txManager   ports.TransactionManager
	notifier    ports.Notifier
	broadcaster ports.EventBroadcaster
	metrics     ports.TicketMetrics
	catalog     *domain.Catalog
	logger      *slog.Logger
	wg          sync.WaitGroup
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service
func NewTicketService(deps TicketServiceDeps) ports.TicketService {
	catalog := deps.Catalog
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketService{
		ticketRepo:  deps.Tickets,
		recorder:    deps.Recorder,
		dispatcher:  deps.Dispatcher,
		numbers:     deps.Numbers,
		txManager:   deps.TxManager,
		notifier:    deps.Notifier,
		broadcaster: deps.Broadcaster,
		metrics:     deps.Metrics,
		catalog:     catalog,
		logger:      logger,
	}
}

// CreateTicket stores a new ticket owned by the caller and writes its first
// history entry. The two writes are independent; a generated number is not
// checked against existing tickets.
func (s *TicketService) CreateTicket(ctx context.Context, caller *domain.Caller, params ports.CreateTicketParams) (*domain.Ticket, error) {
	if err := authorize(caller, PermTicketCreate); err != nil {
		return nil, err
	}

	ticket, err := domain.NewTicket(domain.TicketParams{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		OwnerID:     caller.ID,
		Number:      s.numbers.Generate(),
		CreatedAt:   now(),
	}, s.catalog)
	if err != nil {
		return nil, err
	}

	created, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	actor := caller.ID
	if _, err := s.recorder.Record(ctx, ports.RecordStatusParams{
		TicketID:    created.ID,
		NewStatus:   created.Status,
		Description: domain.InitialStatusNote,
		ChangedAt:   created.CreatedAt,
		ChangedBy:   &actor,
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TicketCreated()
	}

	return created, nil
}

// UpdateTicket edits the mutable fields of a ticket. Only roles allowed to
// assign may set the assignee, and only while it is still empty.
func (s *TicketService) UpdateTicket(ctx context.Context, caller *domain.Caller, params ports.UpdateTicketParams) (*domain.Ticket, error) {
	if err := authorize(caller, PermTicketUpdate); err != nil {
		return nil, err
	}

	errs := apperrors.NewValidationErrors()
	if params.TicketID == uuid.Nil {
		errs.Add("id", "Id no information")
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		errs.Add("title", "Title no information")
	} else if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		errs.Add("title", "Title must be 255 characters or less")
	}
	if utf8.RuneCountInString(params.Description) > domain.MaxDescriptionLength {
		errs.Add("description", "Description must be 5000 characters or less")
	}
	if params.Priority != "" && !s.catalog.HasPriority(params.Priority) {
		errs.Add("priority", "Priority must be one of: "+strings.Join(s.catalog.PriorityNames(), ", "))
	}
	if errs.HasErrors() {
		return nil, errs
	}

	existing, err := s.ticketRepo.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}

	updated := existing.ApplyUpdate(domain.TicketUpdate{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		AssigneeID:  params.AssigneeID,
	}, Can(caller, PermTicketAssign), s.catalog)

	saved, err := s.ticketRepo.Update(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return saved, nil
}

// GetTicket returns the ticket with its status history, newest first.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.Caller, id uuid.UUID) (*domain.Ticket, error) {
	if err := authorize(caller, PermTicketRead); err != nil {
		return nil, err
	}

	var ticket *domain.Ticket
	err := s.txManager.WithReadOnlyTransaction(ctx, func(ctx context.Context) error {
		found, err := s.ticketRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		history, err := s.recorder.History(ctx, id)
		if err != nil {
			return err
		}
		found.Changes = history
		ticket = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// DeleteTicket removes the ticket. Its status history is kept.
func (s *TicketService) DeleteTicket(ctx context.Context, caller *domain.Caller, id uuid.UUID) error {
	if err := authorize(caller, PermTicketDelete); err != nil {
		return err
	}
	return s.ticketRepo.Delete(ctx, id)
}

// ListTickets pages through the tickets visible to the caller.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.Caller, page domain.PageRequest) (*domain.Page[*domain.Ticket], error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}

	spec := domain.ResolveQuery(caller.Role, caller.ID, domain.FilterSet{}, false)
	return s.dispatcher.Execute(ctx, spec, page)
}

// SearchTickets normalizes the raw filters and pages through the matches
// visible to the caller.
func (s *TicketService) SearchTickets(ctx context.Context, caller *domain.Caller, params ports.SearchTicketsParams) (*domain.Page[*domain.Ticket], error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}

	filters := domain.NormalizeFilters(params.Title, params.Status, params.Priority, params.Number)
	spec := domain.ResolveQuery(caller.Role, caller.ID, filters, params.AssignedOnly)
	return s.dispatcher.Execute(ctx, spec, params.Page)
}

// ChangeStatus moves a ticket to a new status and appends the history entry
// in the same transaction. Setting the current status again is a no-op.
func (s *TicketService) ChangeStatus(ctx context.Context, caller *domain.Caller, params ports.ChangeStatusParams) (*domain.Ticket, error) {
	if err := authorize(caller, PermTicketChangeStatus); err != nil {
		return nil, err
	}

	errs := apperrors.NewValidationErrors()
	if params.TicketID == uuid.Nil {
		errs.Add("id", "Id no information")
	}
	status := s.catalog.CanonicalStatus(params.Status)
	if status == "" {
		errs.Add("status", "Status must be one of: "+strings.Join(s.catalog.StatusNames(), ", "))
	}
	if errs.HasErrors() {
		return nil, errs
	}

	var (
		result *domain.Ticket
		change *domain.ChangeStatus
	)

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
		if err != nil {
			return err
		}
		if ticket.Status == status {
			result = ticket
			return nil
		}

		oldStatus := ticket.Status
		ticket.Status = status
		if status == s.catalog.AssignedStatus && ticket.AssigneeID == nil && Can(caller, PermTicketAssign) {
			assignee := caller.ID
			ticket.AssigneeID = &assignee
		}

		updated, err := s.ticketRepo.Update(ctx, ticket)
		if err != nil {
			return fmt.Errorf("update ticket status: %w", err)
		}

		actor := caller.ID
		change, err = s.recorder.Record(ctx, ports.RecordStatusParams{
			TicketID:    updated.ID,
			OldStatus:   oldStatus,
			NewStatus:   status,
			Description: params.Description,
			ChangedAt:   now(),
			ChangedBy:   &actor,
		})
		if err != nil {
			return err
		}

		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if change != nil {
		if s.metrics != nil {
			s.metrics.StatusChanged(change.NewStatus)
		}
		if result.OwnerID != caller.ID {
			s.notifyStatusChange(result)
		}
		s.broadcastStatusChange(result, change)
	}

	return result, nil
}

// Summary counts tickets per status. Every catalog status is present, in
// catalog order; statuses found in the store but unknown to the catalog
// follow.
func (s *TicketService) Summary(ctx context.Context, caller *domain.Caller) ([]domain.StatusCount, error) {
	if err := authorize(caller, PermTicketRead); err != nil {
		return nil, err
	}

	counts, err := s.ticketRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tickets by status: %w", err)
	}

	byStatus := make(map[domain.TicketStatus]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Status] += c.Count
	}

	summary := make([]domain.StatusCount, 0, len(s.catalog.Statuses))
	for _, st := range s.catalog.Statuses {
		summary = append(summary, domain.StatusCount{Status: st, Count: byStatus[st]})
		delete(byStatus, st)
	}
	for _, c := range counts {
		if n, ok := byStatus[c.Status]; ok {
			summary = append(summary, domain.StatusCount{Status: c.Status, Count: n})
			delete(byStatus, c.Status)
		}
	}

	return summary, nil
}

// Shutdown waits for pending notifications to finish.
func (s *TicketService) Shutdown() {
	s.wg.Wait()
}

func (s *TicketService) notifyStatusChange(ticket *domain.Ticket) {
	if s.notifier == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The request context may already be cancelled.
		ctx := context.Background()

		s.notifier.Notify(ctx, ports.NotificationParams{
			RecipientUserID: ticket.OwnerID,
			Subject:         fmt.Sprintf("Your ticket status has been updated: #%d", ticket.Number),
			Message:         fmt.Sprintf("The status of your ticket '%s' was changed to %s.", ticket.Title, ticket.Status),
			TicketID:        ticket.ID,
		})
	}()
}

func (s *TicketService) broadcastStatusChange(ticket *domain.Ticket, change *domain.ChangeStatus) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Broadcast(domain.NewStatusChangedEvent(ticket, change)); err != nil {
		s.logger.Warn("failed to broadcast status change",
			"ticket_id", ticket.ID,
			"error", err,
		)
	}
}

// now is the current time at the microsecond precision the store keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
