// ABOUTME: Websocket endpoint for the realtime chat core
// ABOUTME: Authenticates the handshake, assigns rooms, and dispatches framed operations

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/famcoin/famcoin-gateway/internal/auth"
	"github.com/famcoin/famcoin-gateway/internal/metrics"
	"github.com/famcoin/famcoin-gateway/internal/store"
)

// MessageStore is the slice of persistence the chat core needs.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg *store.Message) error
	MarkMessageRead(ctx context.Context, id string) (*store.Message, error)
	ListConversationMessages(ctx context.Context, parentID, childID string, limit int) ([]*store.Message, error)
}

// HandlerConfig carries the handler's collaborators and tunables.
type HandlerConfig struct {
	Verifier auth.Verifier
	Registry *Registry
	Store    MessageStore
	Logger   *slog.Logger

	// HistoryLimit is the page size when get_history omits a limit.
	HistoryLimit int
	// WriteTimeout bounds each outbound frame write. Zero means no bound.
	WriteTimeout time.Duration
}

// Handler serves the chat websocket endpoint.
type Handler struct {
	verifier auth.Verifier
	registry *Registry
	store    MessageStore
	logger   *slog.Logger

	historyLimit int
	writeTimeout time.Duration
}

// NewHandler creates a chat handler.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Handler{
		verifier:     cfg.Verifier,
		registry:     cfg.Registry,
		store:        cfg.Store,
		logger:       logger.With("component", "chat"),
		historyLimit: historyLimit,
		writeTimeout: cfg.WriteTimeout,
	}
}

// ServeHTTP upgrades the request to a websocket and serves it until
// disconnect. Authentication happens before any room join or dispatch;
// rejected handshakes are closed with a policy close code.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket accept failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	token := auth.TokenFromRequest(r)
	if token == "" {
		h.logger.Info("connection rejected: no token", "remote", r.RemoteAddr)
		ws.Close(websocket.StatusPolicyViolation, "Authentication required")
		return
	}

	principal, err := h.verifier.VerifyPrincipal(token)
	if err != nil {
		h.logger.Info("connection rejected: bad token", "remote", r.RemoteAddr, "error", err)
		ws.Close(websocket.StatusPolicyViolation, "Invalid token")
		return
	}

	conn := newConn(&wsWire{ws: ws}, principal, h.logger, h.writeTimeout)
	h.serve(r.Context(), conn)
	ws.Close(websocket.StatusNormalClosure, "")
}

// serve runs a connection's session: room assignment, the event writer, and
// the sequential request dispatch loop. Returns when the peer disconnects.
func (h *Handler) serve(ctx context.Context, conn *Conn) {
	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.joinRooms(conn)
	defer h.registry.LeaveAll(conn)
	defer conn.close()

	go conn.writeLoop(ctx)

	p := conn.Principal()
	h.logger.Info("connection established",
		"conn_id", conn.ID(),
		"role", p.Role,
		"parent_id", p.ParentID,
		"child_id", p.ChildID)

	// Requests on one connection are dispatched in arrival order; the reply
	// is written before the next frame is read.
	for {
		var req Request
		if err := conn.wire.ReadJSON(ctx, &req); err != nil {
			h.logger.Info("connection closed", "conn_id", conn.ID(), "reason", err)
			return
		}

		conn.reply(ctx, h.dispatch(ctx, conn, req))
	}
}

// joinRooms applies the room assignment policy for the connection's role.
// Partial child identities are logged and skipped, never fatal: the
// connection stays usable for operations that don't need the missing room.
func (h *Handler) joinRooms(conn *Conn) {
	p := conn.Principal()

	if p.IsChild() {
		if p.ChildID != "" {
			h.registry.Join(ChildRoom(p.ChildID), conn)
		} else {
			h.logger.Warn("child connection missing childId, skipping child room", "conn_id", conn.ID())
		}
		if p.ParentID != "" {
			h.registry.Join(ParentRoom(p.ParentID), conn)
		} else {
			h.logger.Warn("child connection missing parentId, skipping parent room", "conn_id", conn.ID())
		}
		h.registry.Join(ConversationRoom(p.ParentID, p.ChildID), conn)
		return
	}

	h.registry.Join(ParentRoom(p.ParentID), conn)
}

func (h *Handler) dispatch(ctx context.Context, conn *Conn, req Request) Response {
	switch req.Type {
	case OpSendMessage:
		return h.handleSendMessage(ctx, conn, req)
	case OpMarkRead:
		return h.handleMarkRead(ctx, req)
	case OpGetHistory:
		return h.handleGetHistory(ctx, req)
	default:
		return errResponse(req.ID, msgUnknownType)
	}
}

func (h *Handler) handleSendMessage(ctx context.Context, conn *Conn, req Request) Response {
	var data sendMessagePayload
	h.decodeData(req, &data)

	if data.Content == "" {
		return errResponse(req.ID, msgContentRequired)
	}
	if data.ParentID == "" || data.ChildID == "" {
		return errResponse(req.ID, msgParticipantsRequired)
	}

	// Sender identity comes from the authenticated principal, never the payload
	p := conn.Principal()
	msg := &store.Message{
		ID:         uuid.New().String(),
		ParentID:   data.ParentID,
		ChildID:    data.ChildID,
		SenderID:   p.SenderID(),
		SenderRole: string(p.Role),
		Content:    data.Content,
		CreatedAt:  time.Now().UTC(),
	}

	if err := h.store.InsertMessage(ctx, msg); err != nil {
		h.logger.Error("persisting message failed",
			"error", err,
			"parent_id", msg.ParentID,
			"child_id", msg.ChildID)
		return errResponse(req.ID, msgServerError)
	}
	metrics.MessagesSent.Inc()

	h.registry.Broadcast(MessageRooms(msg.ParentID, msg.ChildID), Event{
		Type: EventMessage,
		Data: msg,
	})

	return okResponse(req.ID, msg)
}

func (h *Handler) handleMarkRead(ctx context.Context, req Request) Response {
	var data markReadPayload
	h.decodeData(req, &data)

	if data.MessageID == "" {
		return errResponse(req.ID, msgMessageIDRequired)
	}

	msg, err := h.store.MarkMessageRead(ctx, data.MessageID)
	if errors.Is(err, store.ErrNotFound) {
		return errResponse(req.ID, msgMessageNotFound)
	}
	if err != nil {
		h.logger.Error("marking message read failed", "error", err, "message_id", data.MessageID)
		return errResponse(req.ID, msgServerError)
	}

	// Target rooms come from the stored message so callers can't redirect
	// the notification to a conversation they name in the payload
	h.registry.Broadcast(MessageRooms(msg.ParentID, msg.ChildID), Event{
		Type: EventMessageRead,
		Data: messageReadEvent{ID: msg.ID},
	})

	return okResponse(req.ID, msg)
}

func (h *Handler) handleGetHistory(ctx context.Context, req Request) Response {
	var data getHistoryPayload
	h.decodeData(req, &data)

	if data.ParentID == "" || data.ChildID == "" {
		return errResponse(req.ID, msgParticipantsRequired)
	}

	limit := data.Limit
	if limit <= 0 {
		limit = h.historyLimit
	}
	if limit > 200 {
		limit = 200
	}

	messages, err := h.store.ListConversationMessages(ctx, data.ParentID, data.ChildID, limit)
	if err != nil {
		h.logger.Error("loading history failed",
			"error", err,
			"parent_id", data.ParentID,
			"child_id", data.ChildID)
		return errResponse(req.ID, msgServerError)
	}
	if messages == nil {
		messages = []*store.Message{}
	}

	return okResponse(req.ID, messages)
}

// decodeData unmarshals a request's data payload. Malformed payloads are
// treated the same as absent fields: the operation's own validation responds.
func (h *Handler) decodeData(req Request, v any) {
	if len(req.Data) == 0 {
		return
	}
	if err := json.Unmarshal(req.Data, v); err != nil {
		h.logger.Debug("malformed request data", "type", req.Type, "error", err)
	}
}
