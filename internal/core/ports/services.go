package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
)

// CreateTicketParams defines the caller-supplied input for a new ticket.
type CreateTicketParams struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// UpdateTicketParams defines the input for editing a ticket.
type UpdateTicketParams struct {
	TicketID    uuid.UUID
	Title       string
	Description string
	Priority    domain.TicketPriority
	AssigneeID  *uuid.UUID
}

// SearchTicketsParams carries the raw, unnormalized search tokens.
type SearchTicketsParams struct {
	Title        string
	Status       string
	Priority     string
	Number       int
	AssignedOnly bool
	Page         domain.PageRequest
}

// ChangeStatusParams defines the input for moving a ticket to a new status.
type ChangeStatusParams struct {
	TicketID    uuid.UUID
	Status      domain.TicketStatus
	Description string
}

// RecordStatusParams defines one history entry to append.
type RecordStatusParams struct {
	TicketID    uuid.UUID
	OldStatus   domain.TicketStatus
	NewStatus   domain.TicketStatus
	Description string
	ChangedAt   time.Time
	ChangedBy   *uuid.UUID
}

// NotificationParams defines the input for sending a notification.
type NotificationParams struct {
	RecipientUserID uuid.UUID
	Subject         string
	Message         string
	TicketID        uuid.UUID
}

// LoginResult is a signed token and the identity it was issued for.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// TicketService defines the ticket use cases. Every operation takes the
// resolved caller and enforces its role.
type TicketService interface {
	CreateTicket(ctx context.Context, caller *domain.Caller, params CreateTicketParams) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, caller *domain.Caller, params UpdateTicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, caller *domain.Caller, id uuid.UUID) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, caller *domain.Caller, id uuid.UUID) error
	ListTickets(ctx context.Context, caller *domain.Caller, page domain.PageRequest) (*domain.Page[*domain.Ticket], error)
	SearchTickets(ctx context.Context, caller *domain.Caller, params SearchTicketsParams) (*domain.Page[*domain.Ticket], error)
	ChangeStatus(ctx context.Context, caller *domain.Caller, params ChangeStatusParams) (*domain.Ticket, error)
	Summary(ctx context.Context, caller *domain.Caller) ([]domain.StatusCount, error)
	Shutdown()
}

// QueryDispatcher runs a resolved QuerySpec against the ticket store.
type QueryDispatcher interface {
	Execute(ctx context.Context, spec domain.QuerySpec, page domain.PageRequest) (*domain.Page[*domain.Ticket], error)
}

// StatusRecorder appends and reads ticket status history.
type StatusRecorder interface {
	Record(ctx context.Context, params RecordStatusParams) (*domain.ChangeStatus, error)
	History(ctx context.Context, ticketID uuid.UUID) ([]domain.HistoryEntry, error)
}

// NumberGenerator draws the short caller-facing ticket number.
type NumberGenerator interface {
	Generate() int
}

// UserService defines the admin-only user management use cases.
type UserService interface {
	CreateUser(ctx context.Context, caller *domain.Caller, params domain.UserParams) (*domain.User, error)
	UpdateUser(ctx context.Context, caller *domain.Caller, params domain.UserUpdate) (*domain.User, error)
	GetUser(ctx context.Context, caller *domain.Caller, id uuid.UUID) (*domain.User, error)
	DeleteUser(ctx context.Context, caller *domain.Caller, id uuid.UUID) error
	ListUsers(ctx context.Context, caller *domain.Caller, page domain.PageRequest) (*domain.Page[*domain.User], error)
}

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// IdentityProvider maps an authenticated email to the caller behind it.
type IdentityProvider interface {
	ResolveCaller(ctx context.Context, email string) (*domain.Caller, error)
}

// SecretHasher hashes and verifies passwords.
type SecretHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// TokenIssuer signs access tokens for an authenticated user.
type TokenIssuer interface {
	Issue(email string, role domain.Role) (string, time.Time, error)
}

// TicketMetrics records ticket-level counters.
type TicketMetrics interface {
	TicketQuery(kind domain.QueryKind)
	TicketCreated()
	StatusChanged(status domain.TicketStatus)
}

// Notifier defines the port for sending asynchronous notifications.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}

// EventBroadcaster pushes real-time events to subscribed clients.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// WithReadOnlyTransaction runs several reads against one snapshot.
	WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
