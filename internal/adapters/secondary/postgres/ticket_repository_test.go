package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/errors"
)

var ticketBase = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type ticketSeed struct {
	title    string
	status   domain.TicketStatus
	priority domain.TicketPriority
	owner    uuid.UUID
	assignee *uuid.UUID
	number   int
}

// seedTickets inserts the seeds one minute apart, so the last seed is the
// newest ticket.
func seedTickets(t *testing.T, repo *TicketRepository, seeds ...ticketSeed) []*domain.Ticket {
	t.Helper()
	out := make([]*domain.Ticket, 0, len(seeds))
	for i, s := range seeds {
		status := s.status
		if status == "" {
			status = domain.StatusNew
		}
		priority := s.priority
		if priority == "" {
			priority = domain.PriorityLow
		}
		created, err := repo.Create(context.Background(), &domain.Ticket{
			Number:     s.number,
			Title:      s.title,
			Status:     status,
			Priority:   priority,
			OwnerID:    s.owner,
			AssigneeID: s.assignee,
			CreatedAt:  ticketBase.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func titles(p *domain.Page[*domain.Ticket]) []string {
	out := make([]string, 0, len(p.Content))
	for _, t := range p.Content {
		out = append(out, t.Title)
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestTicketRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	owner := createTestUser(t, repos.users, domain.RoleCustomer)

	created, err := repos.tickets.Create(ctx, &domain.Ticket{
		Number:      4242,
		Title:       "Printer jam",
		Description: "Tray 2",
		Status:      domain.StatusNew,
		Priority:    domain.PriorityHigh,
		OwnerID:     owner.ID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	found, err := repos.tickets.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4242, found.Number)
	assert.Equal(t, "Printer jam", found.Title)
	assert.Equal(t, "Tray 2", found.Description)
	assert.Equal(t, domain.StatusNew, found.Status)
	assert.Equal(t, domain.PriorityHigh, found.Priority)
	assert.Equal(t, owner.ID, found.OwnerID)
	assert.Nil(t, found.AssigneeID)
}

func TestTicketRepository_EmptyDescriptionRoundTrips(t *testing.T) {
	repos := newTestRepos(t)
	owner := createTestUser(t, repos.users, domain.RoleCustomer)

	created := seedTickets(t, repos.tickets, ticketSeed{title: "no body", owner: owner.ID})[0]
	found, err := repos.tickets.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "", found.Description)
}

func TestTicketRepository_UpdateKeepsImmutableColumns(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	owner := createTestUser(t, repos.users, domain.RoleCustomer)
	tech := createTestUser(t, repos.users, domain.RoleTechnician)

	original := seedTickets(t, repos.tickets, ticketSeed{title: "old", owner: owner.ID, number: 7})[0]

	changed := *original
	changed.Title = "new"
	changed.Status = domain.StatusAssigned
	changed.AssigneeID = &tech.ID
	changed.Number = 99
	changed.OwnerID = tech.ID
	changed.CreatedAt = time.Now()

	updated, err := repos.tickets.Update(ctx, &changed)
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, domain.StatusAssigned, updated.Status)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, tech.ID, *updated.AssigneeID)

	assert.Equal(t, 7, updated.Number)
	assert.Equal(t, owner.ID, updated.OwnerID)
	assert.True(t, updated.CreatedAt.Equal(original.CreatedAt))
}

func TestTicketRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	_, err := repos.tickets.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, errors.ErrTicketNotFound)

	_, err = repos.tickets.Update(ctx, &domain.Ticket{ID: uuid.New(), Title: "x", Status: domain.StatusNew, Priority: domain.PriorityLow})
	assert.ErrorIs(t, err, errors.ErrTicketNotFound)

	assert.ErrorIs(t, repos.tickets.Delete(ctx, uuid.New()), errors.ErrTicketNotFound)
}

func TestTicketRepository_DeleteKeepsHistory(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	owner := createTestUser(t, repos.users, domain.RoleCustomer)

	ticket := seedTickets(t, repos.tickets, ticketSeed{title: "gone", owner: owner.ID})[0]
	_, err := repos.changes.Create(ctx, &domain.ChangeStatus{TicketID: ticket.ID, NewStatus: domain.StatusNew})
	require.NoError(t, err)

	require.NoError(t, repos.tickets.Delete(ctx, ticket.ID))

	_, err = repos.tickets.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, errors.ErrTicketNotFound)

	changes, err := repos.changes.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, domain.StatusNew, changes[0].NewStatus)
}

func TestTicketRepository_FindAllAndByOwner(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	alice := createTestUser(t, repos.users, domain.RoleCustomer)
	bob := createTestUser(t, repos.users, domain.RoleCustomer)

	seedTickets(t, repos.tickets,
		ticketSeed{title: "A1", owner: alice.ID},
		ticketSeed{title: "B1", owner: bob.ID},
		ticketSeed{title: "A2", owner: alice.ID},
		ticketSeed{title: "A3", owner: alice.ID},
	)

	all, err := repos.tickets.FindAll(ctx, domain.PageRequest{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.TotalElements)
	assert.Equal(t, []string{"A3", "A2", "B1", "A1"}, titles(all))

	mine, err := repos.tickets.FindByOwner(ctx, alice.ID, domain.PageRequest{Index: 1, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, mine.TotalElements)
	assert.Equal(t, []string{"A1"}, titles(mine))
	assert.Equal(t, 1, mine.Number)
	assert.Equal(t, 2, mine.Size)

	beyond, err := repos.tickets.FindAll(ctx, domain.PageRequest{Index: 5, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Content)
	assert.EqualValues(t, 4, beyond.TotalElements)
}

func TestTicketRepository_FindByFilter(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	owner := createTestUser(t, repos.users, domain.RoleCustomer)

	seedTickets(t, repos.tickets,
		ticketSeed{title: "Printer broken", status: domain.StatusNew, priority: domain.PriorityHigh, owner: owner.ID},
		ticketSeed{title: "VPN down", status: domain.StatusClosed, priority: domain.PriorityHigh, owner: owner.ID},
		ticketSeed{title: "printer toner", status: domain.StatusClosed, priority: domain.PriorityLow, owner: owner.ID},
		ticketSeed{title: "100% CPU", status: domain.StatusNew, priority: domain.PriorityLow, owner: owner.ID},
	)

	page := domain.PageRequest{Index: 0, Size: 10}
	tests := []struct {
		name    string
		filters domain.FilterSet
		want    []string
	}{
		{"title substring ignores case", domain.FilterSet{Title: strPtr("PRINTER")}, []string{"printer toner", "Printer broken"}},
		{"status ignores case", domain.FilterSet{Status: strPtr("closed")}, []string{"printer toner", "VPN down"}},
		{"priority ignores case", domain.FilterSet{Priority: strPtr("HIGH")}, []string{"VPN down", "Printer broken"}},
		{"fields combine with and", domain.FilterSet{Title: strPtr("printer"), Status: strPtr("Closed")}, []string{"printer toner"}},
		{"status is not a substring match", domain.FilterSet{Status: strPtr("Clo")}, []string{}},
		{"percent in title is literal", domain.FilterSet{Title: strPtr("100%")}, []string{"100% CPU"}},
		{"underscore in title is literal", domain.FilterSet{Title: strPtr("VPN_")}, []string{}},
		{"empty set matches everything", domain.FilterSet{}, []string{"100% CPU", "printer toner", "VPN down", "Printer broken"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repos.tickets.FindByFilter(ctx, tt.filters, page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
			assert.EqualValues(t, len(tt.want), got.TotalElements)
		})
	}
}

func TestTicketRepository_FindByFilterScoped(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	alice := createTestUser(t, repos.users, domain.RoleCustomer)
	bob := createTestUser(t, repos.users, domain.RoleCustomer)
	tech := createTestUser(t, repos.users, domain.RoleTechnician)

	seedTickets(t, repos.tickets,
		ticketSeed{title: "alice high", priority: domain.PriorityHigh, owner: alice.ID, assignee: &tech.ID},
		ticketSeed{title: "bob high", priority: domain.PriorityHigh, owner: bob.ID},
		ticketSeed{title: "alice low", priority: domain.PriorityLow, owner: alice.ID},
		ticketSeed{title: "bob high assigned", priority: domain.PriorityHigh, owner: bob.ID, assignee: &tech.ID},
	)

	page := domain.PageRequest{Index: 0, Size: 10}
	high := domain.FilterSet{Priority: strPtr("High")}

	owned, err := repos.tickets.FindByFilterAndOwner(ctx, high, alice.ID, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice high"}, titles(owned))

	assigned, err := repos.tickets.FindByFilterAndAssignee(ctx, high, tech.ID, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob high assigned", "alice high"}, titles(assigned))

	none, err := repos.tickets.FindByFilterAndAssignee(ctx, high, bob.ID, page)
	require.NoError(t, err)
	assert.Empty(t, none.Content)
	assert.Zero(t, none.TotalElements)
}

func TestTicketRepository_FindByNumber(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	alice := createTestUser(t, repos.users, domain.RoleCustomer)
	bob := createTestUser(t, repos.users, domain.RoleCustomer)

	seedTickets(t, repos.tickets,
		ticketSeed{title: "first 123", owner: alice.ID, number: 123},
		ticketSeed{title: "other", owner: alice.ID, number: 456},
		ticketSeed{title: "second 123", owner: bob.ID, number: 123},
	)

	got, err := repos.tickets.FindByNumber(ctx, 123, domain.PageRequest{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"second 123", "first 123"}, titles(got))

	huge, err := repos.tickets.FindByNumber(ctx, 3000000000, domain.PageRequest{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, huge.Content)
	assert.EqualValues(t, 0, huge.TotalElements)
}

func TestTicketRepository_CountByStatus(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	owner := createTestUser(t, repos.users, domain.RoleCustomer)

	counts, err := repos.tickets.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	seedTickets(t, repos.tickets,
		ticketSeed{title: "a", status: domain.StatusNew, owner: owner.ID},
		ticketSeed{title: "b", status: domain.StatusNew, owner: owner.ID},
		ticketSeed{title: "c", status: domain.StatusClosed, owner: owner.ID},
	)

	counts, err = repos.tickets.CountByStatus(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.StatusCount{
		{Status: domain.StatusNew, Count: 2},
		{Status: domain.StatusClosed, Count: 1},
	}, counts)
}
