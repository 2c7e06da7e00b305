// ABOUTME: Wire protocol frames for the chat websocket
// ABOUTME: Correlated request/response envelopes plus server push events

package chat

import "encoding/json"

// Request operation types
const (
	OpSendMessage = "send_message"
	OpMarkRead    = "mark_read"
	OpGetHistory  = "get_history"
)

// Server push event types
const (
	EventMessage     = "message"
	EventMessageRead = "message_read"
)

// Client-visible error messages. Validation failures name the missing field;
// store faults are always the generic "Server error".
const (
	msgContentRequired      = "content required"
	msgParticipantsRequired = "parentId and childId required"
	msgMessageIDRequired    = "messageId required"
	msgMessageNotFound      = "Message not found"
	msgUnknownType          = "unknown request type"
	msgServerError          = "Server error"
)

// Request is a client frame. ID is a caller-chosen correlation ID echoed back
// on the matching Response.
type Request struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is the server's reply to a Request. Exactly one Response is sent
// per Request, carrying the same correlation ID.
type Response struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Event is a server push frame, uncorrelated with any request.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func okResponse(id string, data any) Response {
	return Response{ID: id, Type: "response", Status: true, Data: data}
}

func errResponse(id, message string) Response {
	return Response{ID: id, Type: "response", Status: false, Message: message}
}

// sendMessagePayload is the data for a send_message request
type sendMessagePayload struct {
	ParentID string `json:"parentId"`
	ChildID  string `json:"childId"`
	Content  string `json:"content"`
}

// markReadPayload is the data for a mark_read request
type markReadPayload struct {
	MessageID string `json:"messageId"`
}

// getHistoryPayload is the data for a get_history request
type getHistoryPayload struct {
	ParentID string `json:"parentId"`
	ChildID  string `json:"childId"`
	Limit    int    `json:"limit"`
}

// messageReadEvent is the payload of a message_read push
type messageReadEvent struct {
	ID string `json:"id"`
}
