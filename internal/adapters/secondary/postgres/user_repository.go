package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const userColumns = `id, email, password_hash, role, created_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s has stored role %q: %w", u.ID, role, err)
	}
	u.Role = parsed
	return &u, nil
}

// mapUserErr translates driver errors into domain sentinels.
func mapUserErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return apperrors.ErrDuplicateEmail
		case foreignKeyViolation:
			return apperrors.ErrUserInUse
		}
	}
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
		INSERT INTO users (id, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	id := user.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		id, domain.NormalizeEmail(user.Email), user.PasswordHash, user.Role.String(), createdAt)
	created, err := scanUser(row)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return created, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
		UPDATE users SET email = $2, password_hash = $3, role = $4
		WHERE id = $1
		RETURNING ` + userColumns

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		user.ID, domain.NormalizeEmail(user.Email), user.PasswordHash, user.Role.String())
	updated, err := scanUser(row)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return updated, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(GetDBTX(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapUserErr(err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	u, err := scanUser(GetDBTX(ctx, r.pool).QueryRow(ctx, query, domain.NormalizeEmail(email)))
	if err != nil {
		return nil, mapUserErr(err)
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapUserErr(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.User], error) {
	const countQuery = `SELECT COUNT(*) FROM users`
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	db := GetDBTX(ctx, r.pool)

	var total int64
	if err := db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if total == 0 {
		return domain.EmptyPage[*domain.User](page), nil
	}

	rows, err := db.Query(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0, page.Size)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.NewPage(users, total, page), nil
}
