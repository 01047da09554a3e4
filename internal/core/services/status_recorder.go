package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// StatusRecorder appends status history. Records are never edited.
type StatusRecorder struct {
	changeRepo ports.ChangeStatusRepository
}

var _ ports.StatusRecorder = (*StatusRecorder)(nil)

func NewStatusRecorder(changeRepo ports.ChangeStatusRepository) ports.StatusRecorder {
	return &StatusRecorder{changeRepo: changeRepo}
}

func (r *StatusRecorder) Record(ctx context.Context, params ports.RecordStatusParams) (*domain.ChangeStatus, error) {
	changedAt := params.ChangedAt
	if changedAt.IsZero() {
		changedAt = now()
	}

	change := &domain.ChangeStatus{
		TicketID:    params.TicketID,
		OldStatus:   params.OldStatus,
		NewStatus:   params.NewStatus,
		Description: params.Description,
		ChangedAt:   changedAt,
		ChangedBy:   params.ChangedBy,
	}

	created, err := r.changeRepo.Create(ctx, change)
	if err != nil {
		return nil, fmt.Errorf("record status change: %w", err)
	}
	return created, nil
}

// History returns the ticket's entries newest first. Each call queries the
// store again.
func (r *StatusRecorder) History(ctx context.Context, ticketID uuid.UUID) ([]domain.HistoryEntry, error) {
	changes, err := r.changeRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load status history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, c.Entry())
	}
	return entries, nil
}
