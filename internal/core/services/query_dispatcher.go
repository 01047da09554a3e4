package services

import (
	"context"
	"fmt"
	"math"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// maxStoredNumber is the largest ticket number the store can hold.
const maxStoredNumber = math.MaxInt32

// QueryDispatcher maps each resolved query shape onto its repository method.
type QueryDispatcher struct {
	ticketRepo ports.TicketRepository
	metrics    ports.TicketMetrics
}

var _ ports.QueryDispatcher = (*QueryDispatcher)(nil)

func NewQueryDispatcher(ticketRepo ports.TicketRepository, metrics ports.TicketMetrics) ports.QueryDispatcher {
	return &QueryDispatcher{
		ticketRepo: ticketRepo,
		metrics:    metrics,
	}
}

// Execute runs the query. Page bounds are passed through unchanged.
func (d *QueryDispatcher) Execute(ctx context.Context, spec domain.QuerySpec, page domain.PageRequest) (*domain.Page[*domain.Ticket], error) {
	if d.metrics != nil {
		d.metrics.TicketQuery(spec.Kind)
	}

	var (
		result *domain.Page[*domain.Ticket]
		err    error
	)

	switch spec.Kind {
	case domain.QueryAll:
		result, err = d.ticketRepo.FindAll(ctx, page)
	case domain.QueryByOwner:
		result, err = d.ticketRepo.FindByOwner(ctx, spec.ScopeID, page)
	case domain.QueryByFilter:
		result, err = d.ticketRepo.FindByFilter(ctx, spec.Filters, page)
	case domain.QueryByFilterAndOwner:
		result, err = d.ticketRepo.FindByFilterAndOwner(ctx, spec.Filters, spec.ScopeID, page)
	case domain.QueryByFilterAndAssignee:
		result, err = d.ticketRepo.FindByFilterAndAssignee(ctx, spec.Filters, spec.ScopeID, page)
	case domain.QueryByNumber:
		if spec.Filters.Number == nil || *spec.Filters.Number > maxStoredNumber {
			return domain.EmptyPage[*domain.Ticket](page), nil
		}
		result, err = d.ticketRepo.FindByNumber(ctx, *spec.Filters.Number, page)
	default:
		return domain.EmptyPage[*domain.Ticket](page), nil
	}

	if err != nil {
		return nil, fmt.Errorf("query tickets %s: %w", spec.Kind, err)
	}
	return result, nil
}
