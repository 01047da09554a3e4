package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

type ticketPage = domain.Page[*domain.Ticket]

func ticketPageResult(args mock.Arguments) (*ticketPage, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticketPage), args.Error(1)
}

// TicketFunc computes a mocked repository result from the argument.
type TicketFunc = func(ctx context.Context, ticket *domain.Ticket) *domain.Ticket

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

var _ ports.TicketRepository = (*MockTicketRepository)(nil)

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if fn, ok := args.Get(0).(TicketFunc); ok {
		return fn(ctx, ticket), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if fn, ok := args.Get(0).(TicketFunc); ok {
		return fn(ctx, ticket), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTicketRepository) FindAll(ctx context.Context, page domain.PageRequest) (*ticketPage, error) {
	return ticketPageResult(m.Called(ctx, page))
}

func (m *MockTicketRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, page domain.PageRequest) (*ticketPage, error) {
	return ticketPageResult(m.Called(ctx, ownerID, page))
}

func (m *MockTicketRepository) FindByFilter(ctx context.Context, filters domain.FilterSet, page domain.PageRequest) (*ticketPage, error) {
	return ticketPageResult(m.Called(ctx, filters, page))
}

func (m *MockTicketRepository) FindByFilterAndOwner(ctx context.Context, filters domain.FilterSet, ownerID uuid.UUID, page domain.PageRequest) (*ticketPage, error) {
	return ticketPageResult(m.Called(ctx, filters, ownerID, page))
}

func (m *MockTicketRepository) FindByFilterAndAssignee(ctx context.Context, filters domain.FilterSet, assigneeID uuid.UUID, page domain.PageRequest) (*ticketPage, error) {
	return ticketPageResult(m.Called(ctx, filters, assigneeID, page))
}

func (m *MockTicketRepository) FindByNumber(ctx context.Context, number int, page domain.PageRequest) (*ticketPage, error) {
	return ticketPageResult(m.Called(ctx, number, page))
}

func (m *MockTicketRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusCount), args.Error(1)
}

// MockChangeStatusRepository is a mock implementation of ports.ChangeStatusRepository
type MockChangeStatusRepository struct {
	mock.Mock
}

var _ ports.ChangeStatusRepository = (*MockChangeStatusRepository)(nil)

func NewMockChangeStatusRepository() *MockChangeStatusRepository {
	return &MockChangeStatusRepository{}
}

func (m *MockChangeStatusRepository) Create(ctx context.Context, change *domain.ChangeStatus) (*domain.ChangeStatus, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChangeStatus), args.Error(1)
}

func (m *MockChangeStatusRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*domain.ChangeStatus, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChangeStatus), args.Error(1)
}

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

var _ ports.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.User], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.User]), args.Error(1)
}

// MockIdentityCache is a mock implementation of ports.IdentityCache
type MockIdentityCache struct {
	mock.Mock
}

var _ ports.IdentityCache = (*MockIdentityCache)(nil)

func NewMockIdentityCache() *MockIdentityCache {
	return &MockIdentityCache{}
}

func (m *MockIdentityCache) Get(ctx context.Context, email string) (*domain.Caller, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caller), args.Error(1)
}

func (m *MockIdentityCache) Set(ctx context.Context, caller *domain.Caller) error {
	return m.Called(ctx, caller).Error(0)
}

func (m *MockIdentityCache) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// MockStatusRecorder is a mock implementation of ports.StatusRecorder
type MockStatusRecorder struct {
	mock.Mock
}

var _ ports.StatusRecorder = (*MockStatusRecorder)(nil)

func NewMockStatusRecorder() *MockStatusRecorder {
	return &MockStatusRecorder{}
}

func (m *MockStatusRecorder) Record(ctx context.Context, params ports.RecordStatusParams) (*domain.ChangeStatus, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChangeStatus), args.Error(1)
}

func (m *MockStatusRecorder) History(ctx context.Context, ticketID uuid.UUID) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

// MockQueryDispatcher is a mock implementation of ports.QueryDispatcher
type MockQueryDispatcher struct {
	mock.Mock
}

var _ ports.QueryDispatcher = (*MockQueryDispatcher)(nil)

func NewMockQueryDispatcher() *MockQueryDispatcher {
	return &MockQueryDispatcher{}
}

func (m *MockQueryDispatcher) Execute(ctx context.Context, spec domain.QuerySpec, page domain.PageRequest) (*ticketPage, error) {
	return ticketPageResult(m.Called(ctx, spec, page))
}

// FixedNumberGenerator returns the given numbers in order, then repeats the last.
type FixedNumberGenerator struct {
	Numbers []int
	calls   int
}

var _ ports.NumberGenerator = (*FixedNumberGenerator)(nil)

func (g *FixedNumberGenerator) Generate() int {
	if len(g.Numbers) == 0 {
		return 0
	}
	i := g.calls
	if i >= len(g.Numbers) {
		i = len(g.Numbers) - 1
	}
	g.calls++
	return g.Numbers[i]
}

// InlineTransactionManager runs fn directly with the caller's context.
type InlineTransactionManager struct {
	Calls         int
	ReadOnlyCalls int
}

var _ ports.TransactionManager = (*InlineTransactionManager)(nil)

func (t *InlineTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

func (t *InlineTransactionManager) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.ReadOnlyCalls++
	return fn(ctx)
}

// MockSecretHasher is a mock implementation of ports.SecretHasher
type MockSecretHasher struct {
	mock.Mock
}

var _ ports.SecretHasher = (*MockSecretHasher)(nil)

func NewMockSecretHasher() *MockSecretHasher {
	return &MockSecretHasher{}
}

func (m *MockSecretHasher) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *MockSecretHasher) Compare(hash, plain string) error {
	return m.Called(hash, plain).Error(0)
}

// MockTokenIssuer is a mock implementation of ports.TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

var _ ports.TokenIssuer = (*MockTokenIssuer)(nil)

func NewMockTokenIssuer() *MockTokenIssuer {
	return &MockTokenIssuer{}
}

func (m *MockTokenIssuer) Issue(email string, role domain.Role) (string, time.Time, error) {
	args := m.Called(email, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// MockTicketMetrics is a mock implementation of ports.TicketMetrics
type MockTicketMetrics struct {
	mock.Mock
}

var _ ports.TicketMetrics = (*MockTicketMetrics)(nil)

func NewMockTicketMetrics() *MockTicketMetrics {
	return &MockTicketMetrics{}
}

func (m *MockTicketMetrics) TicketQuery(kind domain.QueryKind) {
	m.Called(kind)
}

func (m *MockTicketMetrics) TicketCreated() {
	m.Called()
}

func (m *MockTicketMetrics) StatusChanged(status domain.TicketStatus) {
	m.Called(status)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

var _ ports.Notifier = (*MockNotifier)(nil)

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	m.Called(ctx, params)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

var _ ports.EventBroadcaster = (*MockEventBroadcaster)(nil)

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	return m.Called(event).Error(0)
}

// MockTicketService is a mock implementation of ports.TicketService
type MockTicketService struct {
	mock.Mock
}

var _ ports.TicketService = (*MockTicketService)(nil)

func NewMockTicketService() *MockTicketService {
	return &MockTicketService{}
}

func (m *MockTicketService) CreateTicket(ctx context.Context, caller *domain.Caller, params ports.CreateTicketParams) (*domain.Ticket, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) UpdateTicket(ctx context.Context, caller *domain.Caller, params ports.UpdateTicketParams) (*domain.Ticket, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) GetTicket(ctx context.Context, caller *domain.Caller, id uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) DeleteTicket(ctx context.Context, caller *domain.Caller, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *MockTicketService) ListTickets(ctx context.Context, caller *domain.Caller, page domain.PageRequest) (*ticketPage, error) {
	return ticketPageResult(m.Called(ctx, caller, page))
}

func (m *MockTicketService) SearchTickets(ctx context.Context, caller *domain.Caller, params ports.SearchTicketsParams) (*ticketPage, error) {
	return ticketPageResult(m.Called(ctx, caller, params))
}

func (m *MockTicketService) ChangeStatus(ctx context.Context, caller *domain.Caller, params ports.ChangeStatusParams) (*domain.Ticket, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) Summary(ctx context.Context, caller *domain.Caller) ([]domain.StatusCount, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusCount), args.Error(1)
}

func (m *MockTicketService) Shutdown() {
	m.Called()
}

// MockUserService is a mock implementation of ports.UserService
type MockUserService struct {
	mock.Mock
}

var _ ports.UserService = (*MockUserService)(nil)

func NewMockUserService() *MockUserService {
	return &MockUserService{}
}

func (m *MockUserService) CreateUser(ctx context.Context, caller *domain.Caller, params domain.UserParams) (*domain.User, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, caller *domain.Caller, params domain.UserUpdate) (*domain.User, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, caller *domain.Caller, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, caller *domain.Caller, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *MockUserService) ListUsers(ctx context.Context, caller *domain.Caller, page domain.PageRequest) (*domain.Page[*domain.User], error) {
	args := m.Called(ctx, caller, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.User]), args.Error(1)
}

// MockAuthService is a mock implementation of ports.AuthService
type MockAuthService struct {
	mock.Mock
}

var _ ports.AuthService = (*MockAuthService)(nil)

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.LoginResult), args.Error(1)
}

// MockIdentityProvider is a mock implementation of ports.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

var _ ports.IdentityProvider = (*MockIdentityProvider)(nil)

func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{}
}

func (m *MockIdentityProvider) ResolveCaller(ctx context.Context, email string) (*domain.Caller, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caller), args.Error(1)
}
