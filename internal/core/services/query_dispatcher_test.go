package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/mocks"
	"github.com/lorrc/helpdesk-backend/internal/core/services"
)

func TestQueryDispatcher_Execute(t *testing.T) {
	ctx := context.Background()
	page := domain.PageRequest{Index: 2, Size: 3}
	scope := uuid.New()
	title := "vpn"
	filters := domain.FilterSet{Title: &title}
	number := 12
	result := domain.NewPage([]*domain.Ticket{{ID: uuid.New()}}, 7, page)

	tests := []struct {
		name   string
		spec   domain.QuerySpec
		method string
		args   []any
	}{
		{"all", domain.QuerySpec{Kind: domain.QueryAll}, "FindAll", []any{ctx, page}},
		{"by owner", domain.QuerySpec{Kind: domain.QueryByOwner, ScopeID: scope}, "FindByOwner", []any{ctx, scope, page}},
		{"by filter", domain.QuerySpec{Kind: domain.QueryByFilter, Filters: filters}, "FindByFilter", []any{ctx, filters, page}},
		{"by filter and owner", domain.QuerySpec{Kind: domain.QueryByFilterAndOwner, Filters: filters, ScopeID: scope}, "FindByFilterAndOwner", []any{ctx, filters, scope, page}},
		{"by filter and assignee", domain.QuerySpec{Kind: domain.QueryByFilterAndAssignee, Filters: filters, ScopeID: scope}, "FindByFilterAndAssignee", []any{ctx, filters, scope, page}},
		{"by number", domain.QuerySpec{Kind: domain.QueryByNumber, Filters: domain.FilterSet{Number: &number}}, "FindByNumber", []any{ctx, 12, page}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockTicketRepository()
			metrics := mocks.NewMockTicketMetrics()
			dispatcher := services.NewQueryDispatcher(repo, metrics)

			repo.On(tt.method, tt.args...).Return(result, nil)
			metrics.On("TicketQuery", tt.spec.Kind).Return()

			got, err := dispatcher.Execute(ctx, tt.spec, page)

			require.NoError(t, err)
			assert.Same(t, result, got)
			repo.AssertExpectations(t)
			metrics.AssertExpectations(t)
		})
	}
}

func TestQueryDispatcher_NoneSkipsStore(t *testing.T) {
	repo := mocks.NewMockTicketRepository()
	dispatcher := services.NewQueryDispatcher(repo, nil)
	page := domain.PageRequest{Index: 0, Size: 20}

	got, err := dispatcher.Execute(context.Background(), domain.QuerySpec{Kind: domain.QueryNone}, page)

	require.NoError(t, err)
	assert.Empty(t, got.Content)
	assert.Equal(t, int64(0), got.TotalElements)
	assert.Equal(t, 20, got.Size)
	assert.Empty(t, repo.Calls)
}

func TestQueryDispatcher_NumberBeyondStoreRange(t *testing.T) {
	repo := mocks.NewMockTicketRepository()
	dispatcher := services.NewQueryDispatcher(repo, nil)
	page := domain.PageRequest{Index: 0, Size: 10}

	filters := domain.NormalizeFilters("", "", "", 3000000000)
	spec := domain.ResolveQuery(domain.RoleTechnician, uuid.New(), filters, false)
	require.Equal(t, domain.QueryByNumber, spec.Kind)

	got, err := dispatcher.Execute(context.Background(), spec, page)

	require.NoError(t, err)
	assert.Empty(t, got.Content)
	assert.Equal(t, int64(0), got.TotalElements)
	assert.Empty(t, repo.Calls)
}

func TestQueryDispatcher_WrapsStoreErrors(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockTicketRepository()
	dispatcher := services.NewQueryDispatcher(repo, nil)
	page := domain.PageRequest{Size: 1}
	boom := errors.New("connection reset")

	repo.On("FindAll", ctx, page).Return(nil, boom)

	_, err := dispatcher.Execute(ctx, domain.QuerySpec{Kind: domain.QueryAll}, page)

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "all")
}
