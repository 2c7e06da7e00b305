// ABOUTME: A single live chat connection with serialized writes
// ABOUTME: Wraps the websocket behind a small wire interface for testability

package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/famcoin/famcoin-gateway/internal/auth"
)

// eventBufferSize is the outbound channel buffer per connection.
// Broadcasts beyond this are dropped rather than stalling the sender.
const eventBufferSize = 64

// wire is the framed transport under a Conn. The production implementation
// wraps a websocket; tests substitute an in-memory fake.
type wire interface {
	ReadJSON(ctx context.Context, v any) error
	WriteJSON(ctx context.Context, v any) error
	Close(code websocket.StatusCode, reason string) error
}

// wsWire adapts a coder/websocket connection to the wire interface.
type wsWire struct {
	ws *websocket.Conn
}

func (w *wsWire) ReadJSON(ctx context.Context, v any) error {
	return wsjson.Read(ctx, w.ws, v)
}

func (w *wsWire) WriteJSON(ctx context.Context, v any) error {
	return wsjson.Write(ctx, w.ws, v)
}

func (w *wsWire) Close(code websocket.StatusCode, reason string) error {
	return w.ws.Close(code, reason)
}

// Conn is one authenticated chat connection. Responses and pushed events
// share a write mutex so frames never interleave; events additionally pass
// through a buffered channel so broadcasters never block on a slow peer.
type Conn struct {
	id        string
	principal *auth.Principal
	wire      wire
	logger    *slog.Logger

	writeMu      sync.Mutex
	writeTimeout time.Duration

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(w wire, principal *auth.Principal, logger *slog.Logger, writeTimeout time.Duration) *Conn {
	id := uuid.New().String()
	return &Conn{
		id:           id,
		principal:    principal,
		wire:         w,
		logger:       logger.With("conn_id", id),
		writeTimeout: writeTimeout,
		events:       make(chan Event, eventBufferSize),
		done:         make(chan struct{}),
	}
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// Principal returns the identity authenticated at handshake.
func (c *Conn) Principal() *auth.Principal {
	return c.principal
}

// trySend queues an event for delivery. Returns false if the connection is
// closed or its buffer is full; the event is then dropped.
func (c *Conn) trySend(event Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.events <- event:
		return true
	default:
		return false
	}
}

// reply writes a response frame. Exactly one reply is sent per request.
func (c *Conn) reply(ctx context.Context, resp Response) {
	c.writeFrame(ctx, resp)
}

// writeLoop drains the event channel until the connection closes.
func (c *Conn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case event := <-c.events:
			c.writeFrame(ctx, event)
		}
	}
}

func (c *Conn) writeFrame(ctx context.Context, v any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}

	if err := c.wire.WriteJSON(ctx, v); err != nil {
		// The read loop notices the broken connection and tears down
		c.logger.Debug("write failed", "error", err)
	}
}

// close marks the connection dead. Safe to call more than once.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
