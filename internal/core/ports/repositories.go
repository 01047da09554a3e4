package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
)

// TicketRepository is the ticket store. Every Find method orders by
// creation date, newest first.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error

	FindAll(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Ticket], error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, page domain.PageRequest) (*domain.Page[*domain.Ticket], error)
	FindByFilter(ctx context.Context, filters domain.FilterSet, page domain.PageRequest) (*domain.Page[*domain.Ticket], error)
	FindByFilterAndOwner(ctx context.Context, filters domain.FilterSet, ownerID uuid.UUID, page domain.PageRequest) (*domain.Page[*domain.Ticket], error)
	FindByFilterAndAssignee(ctx context.Context, filters domain.FilterSet, assigneeID uuid.UUID, page domain.PageRequest) (*domain.Page[*domain.Ticket], error)
	FindByNumber(ctx context.Context, number int, page domain.PageRequest) (*domain.Page[*domain.Ticket], error)

	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
}

// ChangeStatusRepository is the append-only status history store.
type ChangeStatusRepository interface {
	Create(ctx context.Context, change *domain.ChangeStatus) (*domain.ChangeStatus, error)
	// ListByTicket returns the history of a ticket, newest first.
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*domain.ChangeStatus, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.User], error)
}

// IdentityCache keeps resolved callers keyed by email. Get returns
// (nil, nil) on a miss.
type IdentityCache interface {
	Get(ctx context.Context, email string) (*domain.Caller, error)
	Set(ctx context.Context, caller *domain.Caller) error
	Delete(ctx context.Context, email string) error
}
