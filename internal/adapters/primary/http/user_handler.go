package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-backend/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// UserHandler serves the admin user management endpoints.
type UserHandler struct {
	userService  ports.UserService
	paging       PagingConfig
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewUserHandler(
	userService ports.UserService,
	paging PagingConfig,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userService:  userService,
		paging:       paging,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "user"),
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListUsers)
	r.Post("/", h.HandleCreateUser)
	r.Put("/", h.HandleUpdateUser)
	r.Get("/{userID}", h.HandleGetUser)
	r.Delete("/{userID}", h.HandleDeleteUser)
}

// CreateUserRequest defines the expected JSON body for creating a user
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest carries the user id in the body.
type UpdateUserRequest struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserDTO is the public view of a user; the password hash never leaves
// the service.
type UserDTO struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt string      `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleCreateUser handles POST /users
func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[CreateUserRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), caller, domain.UserParams{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user created", "new_user_id", user.ID, "new_user_role", user.Role)

	WriteCreated(w, toUserDTO(user))
}

// HandleUpdateUser handles PUT /users
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[UpdateUserRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	v := validation.NewValidator()
	userID := v.UUID("id", req.ID, "Id must be a valid UUID")
	if err := v.Err(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), caller, domain.UserUpdate{
		ID:       userID,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, notFound(err, req.ID))
		return
	}

	WriteSuccess(w, toUserDTO(user))
}

// HandleGetUser handles GET /users/{userID}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.errorHandler)
	if !ok {
		return
	}

	userID, raw, err := parseIDParam(r, "userID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), caller, userID)
	if err != nil {
		h.errorHandler.Handle(w, r, notFound(err, raw))
		return
	}

	WriteSuccess(w, toUserDTO(user))
}

// HandleDeleteUser handles DELETE /users/{userID}
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.errorHandler)
	if !ok {
		return
	}

	userID, raw, err := parseIDParam(r, "userID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), caller, userID); err != nil {
		h.errorHandler.Handle(w, r, notFound(err, raw))
		return
	}

	h.logger.InfoContext(r.Context(), "user deleted", "deleted_user_id", userID)

	WriteSuccess(w, nil)
}

// HandleListUsers handles GET /users?page=&count=
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.errorHandler)
	if !ok {
		return
	}

	page, err := h.userService.ListUsers(r.Context(), caller, h.paging.parse(r))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, domain.MapPage(page, toUserDTO))
}
