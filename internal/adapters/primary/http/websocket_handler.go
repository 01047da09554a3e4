package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	wsAdapter "github.com/lorrc/helpdesk-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/helpdesk-backend/internal/config"
)

// WebSocketHandler upgrades authenticated requests to hub clients. The
// Authenticator in front of it accepts the token as a query parameter
// because browsers cannot set headers on a websocket handshake.
type WebSocketHandler struct {
	hub          *wsAdapter.Hub
	upgrader     websocket.Upgrader
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *wsAdapter.Hub, cfg *config.Config, errorHandler *ErrorHandler, logger *slog.Logger) *WebSocketHandler {
	logger = logger.With("handler", "websocket")
	origins := originPolicy{
		allowed:  cfg.WebSocket.AllowedOrigins,
		allowAll: cfg.IsDevelopment(),
		logger:   logger,
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin:     origins.check,
		},
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// originPolicy decides which browser origins may open a connection.
// Requests without an Origin header come from non-browser clients and
// are let through.
type originPolicy struct {
	allowed  []string
	allowAll bool
	logger   *slog.Logger
}

func (p originPolicy) check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if p.allowAll || origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err == nil && p.permits(u.Host) {
		return true
	}
	p.logger.WarnContext(r.Context(), "websocket origin rejected",
		"origin", origin,
		"remote_addr", r.RemoteAddr,
	)
	return false
}

// permits matches exact hosts, "*", and subdomain patterns such as
// "*.example.com" (which also admits example.com itself).
func (p originPolicy) permits(host string) bool {
	if host == "" {
		return false
	}
	for _, pattern := range p.allowed {
		if pattern == "*" || pattern == host {
			return true
		}
		if base, ok := strings.CutPrefix(pattern, "*."); ok {
			if host == base || strings.HasSuffix(host, "."+base) {
				return true
			}
		}
	}
	return false
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.errorHandler)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := wsAdapter.NewClient(h.hub, conn, caller, h.logger)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	h.logger.InfoContext(r.Context(), "websocket connected", "remote_addr", r.RemoteAddr)

	go client.WritePump()
	go client.ReadPump()
}
