package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// EnsureAdmin creates an admin account for email when no user with that
// address exists yet. An existing user is left untouched, whatever its role.
// It reports whether a user was created.
func EnsureAdmin(ctx context.Context, userRepo ports.UserRepository, hasher ports.SecretHasher, email, password string) (bool, error) {
	params := domain.UserParams{Email: email, Password: password, Role: domain.RoleAdmin.String()}
	if err := params.Validate(); err != nil {
		return false, err
	}

	email = domain.NormalizeEmail(email)
	_, err := userRepo.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return false, fmt.Errorf("look up bootstrap admin: %w", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	_, err = userRepo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, apperrors.ErrDuplicateEmail) {
		// Another instance seeded it first.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	return true, nil
}
