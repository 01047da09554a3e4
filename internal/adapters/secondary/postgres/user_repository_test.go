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

type testRepos struct {
	users   *UserRepository
	tickets *TicketRepository
	changes *ChangeStatusRepository
	tx      *TransactionManager
}

// newTestRepos resets the store and builds repos over the shared pool.
func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")
	resetTables(t)

	return testRepos{
		users:   NewUserRepository(testPool),
		tickets: NewTicketRepository(testPool),
		changes: NewChangeStatusRepository(testPool),
		tx:      NewTransactionManager(testPool),
	}
}

func createTestUser(t *testing.T, repo *UserRepository, role domain.Role) *domain.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &domain.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func TestUserRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	created, err := repos.users.Create(ctx, &domain.User{
		Email:        "  Test.User@Example.com ",
		PasswordHash: "hashedpassword",
		Role:         domain.RoleTechnician,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "test.user@example.com", created.Email)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := repos.users.GetByEmail(ctx, "TEST.user@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, domain.RoleTechnician, byEmail.Role)
	assert.Equal(t, "hashedpassword", byEmail.PasswordHash)

	byID, err := repos.users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)
}

func TestUserRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	_, err := repos.users.GetByEmail(ctx, "nonexistent@example.com")
	assert.ErrorIs(t, err, errors.ErrUserNotFound)

	_, err = repos.users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, errors.ErrUserNotFound)

	_, err = repos.users.Update(ctx, &domain.User{ID: uuid.New(), Email: "x@example.com", Role: domain.RoleCustomer})
	assert.ErrorIs(t, err, errors.ErrUserNotFound)

	assert.ErrorIs(t, repos.users.Delete(ctx, uuid.New()), errors.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	_, err := repos.users.Create(ctx, &domain.User{Email: "dup@example.com", PasswordHash: "h", Role: domain.RoleCustomer})
	require.NoError(t, err)

	_, err = repos.users.Create(ctx, &domain.User{Email: "DUP@example.com", PasswordHash: "h", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, errors.ErrDuplicateEmail)

	other := createTestUser(t, repos.users, domain.RoleCustomer)
	other.Email = "dup@example.com"
	_, err = repos.users.Update(ctx, other)
	assert.ErrorIs(t, err, errors.ErrDuplicateEmail)
}

func TestUserRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	u := createTestUser(t, repos.users, domain.RoleCustomer)
	u.Email = "renamed@example.com"
	u.Role = domain.RoleAdmin
	u.PasswordHash = "new-hash"

	updated, err := repos.users.Update(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "renamed@example.com", updated.Email)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Equal(t, "new-hash", updated.PasswordHash)

	require.NoError(t, repos.users.Delete(ctx, u.ID))
	_, err = repos.users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestUserRepository_List(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	empty, err := repos.users.List(ctx, domain.PageRequest{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, empty.Content)
	assert.Zero(t, empty.TotalElements)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		_, err := repos.users.Create(ctx, &domain.User{
			Email:        uuid.NewString() + "@example.com",
			PasswordHash: "h",
			Role:         domain.RoleCustomer,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	page, err := repos.users.List(ctx, domain.PageRequest{Index: 1, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.True(t, page.Content[0].CreatedAt.Equal(base))
}
