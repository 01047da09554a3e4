package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/mocks"
	"github.com/lorrc/helpdesk-backend/internal/core/services"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: "hash", Role: domain.RoleCustomer}
	expires := time.Now().Add(time.Hour)

	t.Run("success", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		hasher := mocks.NewMockSecretHasher()
		tokens := mocks.NewMockTokenIssuer()
		svc := services.NewAuthService(repo, hasher, tokens)

		repo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)
		hasher.On("Compare", "hash", "secret123").Return(nil)
		tokens.On("Issue", "ana@example.com", domain.RoleCustomer).Return("signed", expires, nil)

		result, err := svc.Login(ctx, "ANA@example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "signed", result.Token)
		assert.Equal(t, expires, result.ExpiresAt)
		assert.Same(t, user, result.User)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(repo, mocks.NewMockSecretHasher(), mocks.NewMockTokenIssuer())
		repo.On("GetByEmail", ctx, "who@example.com").Return(nil, apperrors.ErrUserNotFound)

		_, err := svc.Login(ctx, "who@example.com", "secret123")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		hasher := mocks.NewMockSecretHasher()
		tokens := mocks.NewMockTokenIssuer()
		svc := services.NewAuthService(repo, hasher, tokens)

		repo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)
		hasher.On("Compare", "hash", "nope").Return(errors.New("mismatch"))

		_, err := svc.Login(ctx, "ana@example.com", "nope")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		tokens.AssertNotCalled(t, "Issue")
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := services.NewAuthService(mocks.NewMockUserRepository(), mocks.NewMockSecretHasher(), mocks.NewMockTokenIssuer())

		_, err := svc.Login(ctx, "", "")

		var validationErr *apperrors.ValidationErrors
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Messages(), 2)
	})
}
