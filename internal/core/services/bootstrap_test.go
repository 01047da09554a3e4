package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/mocks"
	"github.com/lorrc/helpdesk-backend/internal/core/services"
)

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing admin", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		hasher := mocks.NewMockSecretHasher()

		repo.On("GetByEmail", ctx, "root@example.com").Return(nil, apperrors.ErrUserNotFound)
		hasher.On("Hash", "rootpass1").Return("hashed", nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "root@example.com" && u.Role == domain.RoleAdmin && u.PasswordHash == "hashed"
		})).Return(&domain.User{ID: uuid.New()}, nil)

		created, err := services.EnsureAdmin(ctx, repo, hasher, " Root@Example.com", "rootpass1")
		require.NoError(t, err)
		assert.True(t, created)
		repo.AssertExpectations(t)
	})

	t.Run("existing user is kept", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		hasher := mocks.NewMockSecretHasher()

		repo.On("GetByEmail", ctx, "root@example.com").Return(&domain.User{ID: uuid.New(), Role: domain.RoleCustomer}, nil)

		created, err := services.EnsureAdmin(ctx, repo, hasher, "root@example.com", "rootpass1")
		require.NoError(t, err)
		assert.False(t, created)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		hasher.AssertNotCalled(t, "Hash", mock.Anything)
	})

	t.Run("lost race is not an error", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		hasher := mocks.NewMockSecretHasher()

		repo.On("GetByEmail", ctx, "root@example.com").Return(nil, apperrors.ErrUserNotFound)
		hasher.On("Hash", "rootpass1").Return("hashed", nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, apperrors.ErrDuplicateEmail)

		created, err := services.EnsureAdmin(ctx, repo, hasher, "root@example.com", "rootpass1")
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("weak password is rejected", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()

		_, err := services.EnsureAdmin(ctx, repo, mocks.NewMockSecretHasher(), "root@example.com", "short")

		var verrs *apperrors.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		boom := errors.New("db down")
		repo.On("GetByEmail", ctx, "root@example.com").Return(nil, boom)

		_, err := services.EnsureAdmin(ctx, repo, mocks.NewMockSecretHasher(), "root@example.com", "rootpass1")
		assert.ErrorIs(t, err, boom)
	})
}
