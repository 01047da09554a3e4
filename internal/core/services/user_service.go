package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// UserService implements admin-only user management.
type UserService struct {
	userRepo ports.UserRepository
	hasher   ports.SecretHasher
	cache    ports.IdentityCache
	logger   *slog.Logger
}

var _ ports.UserService = (*UserService)(nil)

// NewUserService creates a new user service. cache may be nil.
func NewUserService(userRepo ports.UserRepository, hasher ports.SecretHasher, cache ports.IdentityCache, logger *slog.Logger) ports.UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		cache:    cache,
		logger:   logger,
	}
}

func (s *UserService) CreateUser(ctx context.Context, caller *domain.Caller, params domain.UserParams) (*domain.User, error) {
	if err := authorize(caller, PermUserManage); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(params.Email)
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	role, _ := domain.ParseRole(params.Role)
	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.userRepo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
}

// UpdateUser replaces the email and, when given, the password and role.
func (s *UserService) UpdateUser(ctx context.Context, caller *domain.Caller, params domain.UserUpdate) (*domain.User, error) {
	if err := authorize(caller, PermUserManage); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByID(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(params.Email)
	if email != existing.Email {
		if err := s.ensureEmailFree(ctx, email, existing.ID); err != nil {
			return nil, err
		}
	}

	previousEmail := existing.Email
	existing.Email = email
	if params.Role != "" {
		existing.Role, _ = domain.ParseRole(params.Role)
	}
	if params.Password != "" {
		hash, err := s.hasher.Hash(params.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		existing.PasswordHash = hash
	}

	updated, err := s.userRepo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, previousEmail)
	if email != previousEmail {
		s.evict(ctx, email)
	}
	return updated, nil
}

func (s *UserService) GetUser(ctx context.Context, caller *domain.Caller, id uuid.UUID) (*domain.User, error) {
	if err := authorize(caller, PermUserManage); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, caller *domain.Caller, id uuid.UUID) error {
	if err := authorize(caller, PermUserManage); err != nil {
		return err
	}

	existing, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.evict(ctx, existing.Email)
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, caller *domain.Caller, page domain.PageRequest) (*domain.Page[*domain.User], error) {
	if err := authorize(caller, PermUserManage); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, page)
}

// ensureEmailFree fails with ErrDuplicateEmail when another user holds email.
func (s *UserService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	other, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && other.ID != self:
		return apperrors.ErrDuplicateEmail
	case err == nil, errors.Is(err, apperrors.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

func (s *UserService) evict(ctx context.Context, email string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "failed to evict cached identity", "email", email, "error", err)
	}
}
