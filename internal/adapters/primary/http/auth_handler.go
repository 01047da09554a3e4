package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/helpdesk-backend/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// AuthHandler exchanges credentials for an access token.
type AuthHandler struct {
	authService  ports.AuthService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewAuthHandler(authService ports.AuthService, errorHandler *ErrorHandler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "auth"),
	}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.HandleLogin)
}

// LoginRequest defines the expected JSON body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the token plus the identity it was issued for.
type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      UserDTO `json:"user"`
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeJSON[LoginRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", "login_user_id", result.User.ID)

	WriteSuccess(w, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserDTO(result.User),
	})
}
