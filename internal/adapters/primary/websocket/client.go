package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
)

const (
	writeWait         = 10 * time.Second
	defaultPongWait   = time.Minute
	defaultPingPeriod = defaultPongWait * 9 / 10
	maxMessageSize    = 1024
	sendQueueSize     = 256
	subscribeTimeout  = 5 * time.Second
)

// Server-side event types that never come from the core.
const (
	EventPong              domain.EventType = "PONG"
	EventSubscribed        domain.EventType = "SUBSCRIBED"
	EventSubscriptionError domain.EventType = "SUBSCRIPTION_ERROR"
)

// Inbound message types.
const (
	msgSubscribe   = "SUBSCRIBE_TO_TICKET"
	msgUnsubscribe = "UNSUBSCRIBE_FROM_TICKET"
	msgPing        = "PING"
)

// ClientMessage is a frame sent by the browser.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SubscribePayload names the ticket to start or stop watching.
type SubscribePayload struct {
	TicketID uuid.UUID `json:"ticketId"`
}

// Client is one websocket connection. ReadPump and WritePump each run on
// their own goroutine; the hub owns the send queue and closes it.
type Client struct {
	Caller *domain.Caller

	hub  *Hub
	conn *websocket.Conn

	sendMu sync.Mutex
	send   chan domain.Event
	closed bool

	subsMu sync.RWMutex
	subs   map[uuid.UUID]struct{}

	logger *slog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, caller *domain.Caller, logger *slog.Logger) *Client {
	return &Client{
		Caller: caller,
		hub:    hub,
		conn:   conn,
		send:   make(chan domain.Event, sendQueueSize),
		subs:   make(map[uuid.UUID]struct{}),
		logger: logger.With("user_id", caller.ID.String()),
	}
}

// CloseSend closes the send queue. Later calls do nothing.
func (c *Client) CloseSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// trySend queues event without blocking. It reports false only when the
// queue of a live client is full; a closed client swallows the event.
func (c *Client) trySend(event domain.Event) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

func (c *Client) addSubscription(ticketID uuid.UUID) {
	c.subsMu.Lock()
	c.subs[ticketID] = struct{}{}
	c.subsMu.Unlock()
}

func (c *Client) removeSubscription(ticketID uuid.UUID) {
	c.subsMu.Lock()
	delete(c.subs, ticketID)
	c.subsMu.Unlock()
}

// Subscriptions returns the watched ticket IDs in no particular order.
func (c *Client) Subscriptions() []uuid.UUID {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	ids := make([]uuid.UUID, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	return ids
}

// ReadPump handles inbound frames until the connection fails or the peer
// stops answering pings, then unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	pongWait := c.hub.pongWait
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) }

	c.conn.SetReadLimit(maxMessageSize)
	if err := extend(""); err != nil {
		c.logger.Error("set read deadline", "error", err)
		return
	}
	c.conn.SetPongHandler(extend)

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}
		c.handleIncomingMessage(frame)
	}
}

// WritePump writes queued events and keepalive pings. It sends a close
// frame once the hub closes the queue.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		var err error
		select {
		case event, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
				return
			}
			err = c.write(func() error { return c.conn.WriteJSON(event) })
		case <-ticker.C:
			err = c.write(func() error { return c.conn.WriteMessage(websocket.PingMessage, nil) })
		}
		if err != nil {
			c.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

func (c *Client) write(fn func() error) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return fn()
}

func (c *Client) handleIncomingMessage(frame []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		c.logger.Warn("malformed client message", "error", err)
		return
	}

	switch msg.Type {
	case msgSubscribe:
		c.handleSubscribe(msg.Payload)
	case msgUnsubscribe:
		if p, err := decodeSubscribe(msg.Payload); err == nil {
			c.hub.unsubscribe(c, p.TicketID)
		}
	case msgPing:
		c.reply(domain.Event{Type: EventPong})
	default:
		c.logger.Debug("unknown client message", "type", msg.Type)
	}
}

var errNoTicketID = errors.New("missing ticket id")

func decodeSubscribe(raw json.RawMessage) (SubscribePayload, error) {
	var p SubscribePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, err
	}
	if p.TicketID == uuid.Nil {
		return p, errNoTicketID
	}
	return p, nil
}

func (c *Client) handleSubscribe(raw json.RawMessage) {
	p, err := decodeSubscribe(raw)
	if err != nil {
		c.logger.Warn("invalid subscribe payload", "error", err)
		c.reply(domain.Event{Type: EventSubscriptionError, Payload: "invalid ticket id"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), subscribeTimeout)
	defer cancel()

	if err := c.hub.subscribe(ctx, c, p.TicketID); err != nil {
		c.logger.Info("subscription rejected", "ticket_id", p.TicketID, "error", err)
		c.reply(domain.Event{Type: EventSubscriptionError, TicketID: p.TicketID, Payload: "ticket not available"})
		return
	}
	c.reply(domain.Event{Type: EventSubscribed, TicketID: p.TicketID})
}

// reply queues a direct response; a full queue drops it.
func (c *Client) reply(event domain.Event) {
	_ = c.trySend(event)
}
