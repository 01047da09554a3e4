package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lorrc/helpdesk-backend/internal/auth"
	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
	"github.com/lorrc/helpdesk-backend/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// CallerKey is the key used to store the resolved caller in the request context.
const CallerKey contextKey = "caller"

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// Authenticator turns a bearer token into a domain.Caller.
type Authenticator struct {
	tokens     TokenValidator
	identities ports.IdentityProvider
	logger     *slog.Logger
}

func NewAuthenticator(tokens TokenValidator, identities ports.IdentityProvider, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		tokens:     tokens,
		identities: identities,
		logger:     logger,
	}
}

// Middleware requires a valid token in the Authorization header. A
// "token" query parameter is accepted as well so browsers can open
// websocket connections.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := a.tokens.ValidateToken(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		caller, err := a.identities.ResolveCaller(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			a.logger.ErrorContext(r.Context(), "failed to resolve caller", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
			return
		}

		recordCaller(r.Context(), caller)
		ctx := WithCaller(r.Context(), caller)
		ctx = logging.WithUserID(ctx, caller.ID.String())
		ctx = logging.WithRole(ctx, caller.Role.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		token := r.URL.Query().Get("token")
		return token, token != ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// WithCaller stores caller in ctx the way Authenticator does.
func WithCaller(ctx context.Context, caller *domain.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// CallerFromContext returns the caller stored by Authenticator, if any.
func CallerFromContext(ctx context.Context) (*domain.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(*domain.Caller)
	return caller, ok && caller != nil
}

// RequireRole rejects callers that hold none of the given roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !caller.HasRole(roles...) {
				writeError(w, http.StatusForbidden, "You do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errorEnvelope struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Errors: []string{message}})
}
