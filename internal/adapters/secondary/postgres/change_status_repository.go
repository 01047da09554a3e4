package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

const changeStatusColumns = `id, ticket_id, old_status, new_status, description, changed_at, changed_by`

// ChangeStatusRepository stores the status history. Rows are never updated.
type ChangeStatusRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ChangeStatusRepository = (*ChangeStatusRepository)(nil)

func NewChangeStatusRepository(pool *pgxpool.Pool) *ChangeStatusRepository {
	return &ChangeStatusRepository{pool: pool}
}

func scanChangeStatus(row pgx.Row) (*domain.ChangeStatus, error) {
	var (
		c           domain.ChangeStatus
		oldStatus   string
		newStatus   string
		description pgtype.Text
		changedBy   pgtype.UUID
	)
	err := row.Scan(&c.ID, &c.TicketID, &oldStatus, &newStatus, &description, &c.ChangedAt, &changedBy)
	if err != nil {
		return nil, err
	}
	c.OldStatus = domain.TicketStatus(oldStatus)
	c.NewStatus = domain.TicketStatus(newStatus)
	c.Description = fromText(description)
	c.ChangedBy = fromNullUUID(changedBy)
	return &c, nil
}

func (r *ChangeStatusRepository) Create(ctx context.Context, change *domain.ChangeStatus) (*domain.ChangeStatus, error) {
	const query = `
		INSERT INTO change_status (id, ticket_id, old_status, new_status, description, changed_at, changed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + changeStatusColumns

	id := change.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	changedAt := change.ChangedAt
	if changedAt.IsZero() {
		changedAt = time.Now().UTC()
	}

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		id, change.TicketID, string(change.OldStatus), string(change.NewStatus),
		toText(change.Description), changedAt, toNullUUID(change.ChangedBy))

	created, err := scanChangeStatus(row)
	if err != nil {
		return nil, fmt.Errorf("insert status change: %w", err)
	}
	return created, nil
}

func (r *ChangeStatusRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*domain.ChangeStatus, error) {
	const query = `
		SELECT ` + changeStatusColumns + `
		FROM change_status
		WHERE ticket_id = $1
		ORDER BY changed_at DESC, id`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	defer rows.Close()

	var changes []*domain.ChangeStatus
	for rows.Next() {
		c, err := scanChangeStatus(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
