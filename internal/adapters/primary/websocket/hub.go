package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// AccessChecker reports whether caller may watch a ticket. It returns an
// error when the ticket is missing or hidden from the caller.
type AccessChecker func(ctx context.Context, caller *domain.Caller, ticketID uuid.UUID) error

type clientSet map[*Client]struct{}

// index groups clients under a key: user ID for connections, ticket ID
// for subscriptions. Empty groups are dropped.
type index map[uuid.UUID]clientSet

func (ix index) add(key uuid.UUID, c *Client) int {
	set, ok := ix[key]
	if !ok {
		set = make(clientSet)
		ix[key] = set
	}
	set[c] = struct{}{}
	return len(set)
}

func (ix index) remove(key uuid.UUID, c *Client) {
	set, ok := ix[key]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(ix, key)
	}
}

// Hub tracks connected clients and delivers ticket events to the clients
// watching each ticket. Registration, removal and delivery happen on the
// Run goroutine; mu lets subscriptions and counters run elsewhere.
type Hub struct {
	mu    sync.RWMutex
	users index
	rooms index

	events     chan domain.Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	access     AccessChecker
	pingPeriod time.Duration
	pongWait   time.Duration
	logger     *slog.Logger
}

var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a hub. With a nil access checker any authenticated client
// may watch any ticket.
func NewHub(access AccessChecker, logger *slog.Logger) *Hub {
	return &Hub{
		users:      make(index),
		rooms:      make(index),
		events:     make(chan domain.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		access:     access,
		pingPeriod: defaultPingPeriod,
		pongWait:   defaultPongWait,
		logger:     logger.With("component", "websocket_hub"),
	}
}

// WithKeepalive overrides the ping period and pong deadline used by
// clients registered afterwards. Non-positive values are ignored, and a
// ping period not shorter than pongWait is pulled under it.
func (h *Hub) WithKeepalive(pingPeriod, pongWait time.Duration) *Hub {
	if pongWait > 0 {
		h.pongWait = pongWait
	}
	if pingPeriod > 0 {
		h.pingPeriod = pingPeriod
	}
	if h.pingPeriod >= h.pongWait {
		h.pingPeriod = h.pongWait * 9 / 10
	}
	return h
}

// Broadcast queues an event without blocking the caller. Events that do
// not fit in the queue are dropped.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.events <- event:
	default:
		h.logger.Warn("event queue full, dropping event",
			"event_type", event.Type,
			"ticket_id", event.TicketID,
		)
	}
	return nil
}

// Run owns client lifecycles until ctx is cancelled, then disconnects
// everyone still attached.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.disconnectAll()
			return
		case c := <-h.register:
			h.attach(c)
		case c := <-h.unregister:
			h.mu.Lock()
			h.detachLocked(c)
			h.mu.Unlock()
			h.logger.Info("client disconnected", "user_id", c.Caller.ID)
		case event := <-h.events:
			h.deliver(event)
		}
	}
}

// Register hands a new client to the hub. It reports false once the hub
// has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister detaches a client. It is safe to call after the hub stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) attach(c *Client) {
	h.mu.Lock()
	n := h.users.add(c.Caller.ID, c)
	h.mu.Unlock()

	h.logger.Info("client connected", "user_id", c.Caller.ID, "user_connections", n)
}

// detachLocked removes c from every index and closes its send queue.
func (h *Hub) detachLocked(c *Client) {
	h.users.remove(c.Caller.ID, c)
	for _, ticketID := range c.Subscriptions() {
		h.rooms.remove(ticketID, c)
	}
	c.CloseSend()
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.users {
		for c := range set {
			h.detachLocked(c)
		}
	}
}

// deliver sends event to the ticket's watchers. A watcher whose queue is
// full is disconnected rather than allowed to stall the others.
func (h *Hub) deliver(event domain.Event) {
	h.mu.RLock()
	watchers := make([]*Client, 0, len(h.rooms[event.TicketID]))
	for c := range h.rooms[event.TicketID] {
		watchers = append(watchers, c)
	}
	h.mu.RUnlock()

	if len(watchers) == 0 {
		return
	}
	h.logger.Debug("delivering event",
		"event_type", event.Type,
		"ticket_id", event.TicketID,
		"watchers", len(watchers),
	)

	for _, c := range watchers {
		if c.trySend(event) {
			continue
		}
		h.logger.Warn("client too slow, disconnecting", "user_id", c.Caller.ID)
		h.mu.Lock()
		h.detachLocked(c)
		h.mu.Unlock()
	}
}

// subscribe puts c in the ticket's room once the access check passes.
func (h *Hub) subscribe(ctx context.Context, c *Client, ticketID uuid.UUID) error {
	if h.access != nil {
		if err := h.access(ctx, c.Caller, ticketID); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.rooms.add(ticketID, c)
	c.addSubscription(ticketID)
	h.mu.Unlock()

	h.logger.Debug("client watching ticket", "user_id", c.Caller.ID, "ticket_id", ticketID)
	return nil
}

func (h *Hub) unsubscribe(c *Client, ticketID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.rooms.remove(ticketID, c)
	c.removeSubscription(ticketID)
}

// ClientCount is the number of open connections across all users.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.users {
		n += len(set)
	}
	return n
}

// ClientsInRoom is the number of clients watching ticketID.
func (h *Hub) ClientsInRoom(ticketID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[ticketID])
}
