package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// IdentityService resolves token subjects to callers, reading through the
// identity cache when one is configured.
type IdentityService struct {
	userRepo ports.UserRepository
	cache    ports.IdentityCache
	logger   *slog.Logger
}

var _ ports.IdentityProvider = (*IdentityService)(nil)

func NewIdentityService(userRepo ports.UserRepository, cache ports.IdentityCache, logger *slog.Logger) ports.IdentityProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityService{
		userRepo: userRepo,
		cache:    cache,
		logger:   logger,
	}
}

// ResolveCaller returns the caller for email. A user that no longer exists
// is unauthorized. Cache failures are logged and the store is used instead.
func (s *IdentityService) ResolveCaller(ctx context.Context, email string) (*domain.Caller, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.ErrUnauthorized
	}

	if s.cache != nil {
		caller, err := s.cache.Get(ctx, email)
		if err != nil {
			s.logger.WarnContext(ctx, "identity cache read failed", "error", err)
		} else if caller != nil {
			return caller, nil
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	caller := user.Caller()
	if s.cache != nil {
		if err := s.cache.Set(ctx, caller); err != nil {
			s.logger.WarnContext(ctx, "identity cache write failed", "error", err)
		}
	}
	return caller, nil
}
