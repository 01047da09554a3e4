package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

const ticketColumns = `id, number, title, description, status, priority, owner_id, assignee_id, created_at`

type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t           domain.Ticket
		description pgtype.Text
		assignee    pgtype.UUID
		status      string
		priority    string
	)
	err := row.Scan(&t.ID, &t.Number, &t.Title, &description, &status, &priority,
		&t.OwnerID, &assignee, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Description = fromText(description)
	t.Status = domain.TicketStatus(status)
	t.Priority = domain.TicketPriority(priority)
	t.AssigneeID = fromNullUUID(assignee)
	return &t, nil
}

func mapTicketErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrTicketNotFound
	}
	return err
}

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	const query = `
		INSERT INTO tickets (id, number, title, description, status, priority, owner_id, assignee_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + ticketColumns

	id := ticket.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := ticket.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		id, ticket.Number, ticket.Title, toText(ticket.Description),
		string(ticket.Status), string(ticket.Priority),
		ticket.OwnerID, toNullUUID(ticket.AssigneeID), createdAt)

	created, err := scanTicket(row)
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	return created, nil
}

// Update rewrites the mutable columns. Number, owner and creation date are
// never touched.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	const query = `
		UPDATE tickets
		SET title = $2, description = $3, status = $4, priority = $5, assignee_id = $6
		WHERE id = $1
		RETURNING ` + ticketColumns

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		ticket.ID, ticket.Title, toText(ticket.Description),
		string(ticket.Status), string(ticket.Priority), toNullUUID(ticket.AssigneeID))

	updated, err := scanTicket(row)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	return updated, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(GetDBTX(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapTicketErr(err)
	}
	return t, nil
}

// Delete removes the ticket row. Its status history is kept.
func (r *TicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) FindAll(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Ticket], error) {
	return r.findPage(ctx, newWhere(), page)
}

func (r *TicketRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, page domain.PageRequest) (*domain.Page[*domain.Ticket], error) {
	w := newWhere()
	w.eq("owner_id", ownerID)
	return r.findPage(ctx, w, page)
}

func (r *TicketRepository) FindByFilter(ctx context.Context, filters domain.FilterSet, page domain.PageRequest) (*domain.Page[*domain.Ticket], error) {
	w := newWhere()
	w.filters(filters)
	return r.findPage(ctx, w, page)
}

func (r *TicketRepository) FindByFilterAndOwner(ctx context.Context, filters domain.FilterSet, ownerID uuid.UUID, page domain.PageRequest) (*domain.Page[*domain.Ticket], error) {
	w := newWhere()
	w.eq("owner_id", ownerID)
	w.filters(filters)
	return r.findPage(ctx, w, page)
}

func (r *TicketRepository) FindByFilterAndAssignee(ctx context.Context, filters domain.FilterSet, assigneeID uuid.UUID, page domain.PageRequest) (*domain.Page[*domain.Ticket], error) {
	w := newWhere()
	w.eq("assignee_id", assigneeID)
	w.filters(filters)
	return r.findPage(ctx, w, page)
}

// FindByNumber answers an empty page for numbers outside the INTEGER
// column range.
func (r *TicketRepository) FindByNumber(ctx context.Context, number int, page domain.PageRequest) (*domain.Page[*domain.Ticket], error) {
	if number > math.MaxInt32 || number < math.MinInt32 {
		return domain.EmptyPage[*domain.Ticket](page), nil
	}
	w := newWhere()
	w.eq("number", number)
	return r.findPage(ctx, w, page)
}

// CountByStatus returns the stored counts in status order. Statuses with
// no tickets are absent.
func (r *TicketRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	const query = `SELECT status, COUNT(*) FROM tickets GROUP BY status ORDER BY status`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count tickets by status: %w", err)
	}
	defer rows.Close()

	var counts []domain.StatusCount
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts = append(counts, domain.StatusCount{Status: domain.TicketStatus(status), Count: n})
	}
	return counts, rows.Err()
}

func (r *TicketRepository) findPage(ctx context.Context, w *where, page domain.PageRequest) (*domain.Page[*domain.Ticket], error) {
	db := GetDBTX(ctx, r.pool)
	clause := w.String()

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`+clause, w.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}
	if total == 0 {
		return domain.EmptyPage[*domain.Ticket](page), nil
	}

	args := append(w.args, page.Size, page.Offset())
	query := `SELECT ` + ticketColumns + ` FROM tickets` + clause +
		` ORDER BY created_at DESC, id` +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0, page.Size)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.NewPage(tickets, total, page), nil
}

// where accumulates AND-ed predicates with positional arguments.
type where struct {
	conds []string
	args  []any
}

func newWhere() *where {
	return &where{}
}

func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) eq(column string, v any) {
	w.conds = append(w.conds, column+" = "+w.arg(v))
}

// filters adds the triple predicates. Title is a case-insensitive substring
// match; status and priority match whole values ignoring case.
func (w *where) filters(f domain.FilterSet) {
	if f.Title != nil {
		w.conds = append(w.conds, `title ILIKE '%' || `+w.arg(escapeLike(*f.Title))+` || '%' ESCAPE '\'`)
	}
	if f.Status != nil {
		w.conds = append(w.conds, "lower(status) = lower("+w.arg(*f.Status)+")")
	}
	if f.Priority != nil {
		w.conds = append(w.conds, "lower(priority) = lower("+w.arg(*f.Priority)+")")
	}
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
