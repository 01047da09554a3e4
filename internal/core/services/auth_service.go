package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// AuthService implements authentication business logic
type AuthService struct {
	userRepo ports.UserRepository
	hasher   ports.SecretHasher
	tokens   ports.TokenIssuer
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new authentication service
func NewAuthService(userRepo ports.UserRepository, hasher ports.SecretHasher, tokens ports.TokenIssuer) ports.AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Login checks the credentials and issues a signed token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	errs := apperrors.NewValidationErrors()
	if email == "" {
		errs.Add("email", "Email no information")
	}
	if password == "" {
		errs.Add("password", "Password no information")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Don't reveal whether email exists
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &ports.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
