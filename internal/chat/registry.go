// ABOUTME: Connection registry mapping room names to live chat connections
// ABOUTME: One instance per process, injected into the handler; fan-out is fire-and-forget

package chat

import (
	"log/slog"
	"sync"

	"github.com/famcoin/famcoin-gateway/internal/metrics"
)

// Registry tracks which connections are joined to which rooms. It is the
// single mutable index behind broadcast routing; rooms exist only while at
// least one connection is joined.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Conn]struct{}
	conns map[*Conn]map[string]struct{} // reverse index for LeaveAll

	logger *slog.Logger
}

// NewRegistry creates a registry. Pass nil logger for default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		rooms:  make(map[string]map[*Conn]struct{}),
		conns:  make(map[*Conn]map[string]struct{}),
		logger: logger.With("component", "registry"),
	}
}

// Join adds a connection to a room.
func (r *Registry) Join(room string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(map[*Conn]struct{})
	}
	r.rooms[room][conn] = struct{}{}

	if _, ok := r.conns[conn]; !ok {
		r.conns[conn] = make(map[string]struct{})
	}
	r.conns[conn][room] = struct{}{}

	r.logger.Debug("connection joined room", "room", room, "conn_id", conn.ID())
}

// Leave removes a connection from a room.
func (r *Registry) Leave(room string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(room, conn)
}

// LeaveAll removes a connection from every room it joined. Called on
// disconnect; there is no other teardown side effect.
func (r *Registry) LeaveAll(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.conns[conn] {
		r.leaveLocked(room, conn)
	}
}

func (r *Registry) leaveLocked(room string, conn *Conn) {
	if members, ok := r.rooms[room]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	if rooms, ok := r.conns[conn]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.conns, conn)
		}
	}
}

// Rooms returns the rooms a connection is currently joined to.
func (r *Registry) Rooms(conn *Conn) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rooms []string
	for room := range r.conns[conn] {
		rooms = append(rooms, room)
	}
	return rooms
}

// Broadcast delivers an event to every connection joined to any of the given
// rooms. A connection present in more than one targeted room receives the
// event once. Delivery is fire-and-forget: connections whose outbound buffer
// is full drop the event rather than stall the sender.
func (r *Registry) Broadcast(rooms []string, event Event) {
	r.mu.RLock()
	// Collect distinct targets under the read lock, send after releasing it
	targets := make(map[*Conn]struct{})
	for _, room := range rooms {
		for conn := range r.rooms[room] {
			targets[conn] = struct{}{}
		}
	}
	r.mu.RUnlock()

	for conn := range targets {
		if conn.trySend(event) {
			metrics.EventsBroadcast.Inc()
		} else {
			metrics.EventsDropped.Inc()
			r.logger.Debug("dropped event for slow connection",
				"event", event.Type,
				"conn_id", conn.ID())
		}
	}
}
