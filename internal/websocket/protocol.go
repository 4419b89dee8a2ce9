package websocket

import "encoding/json"

// Error codes carried by a failed Response.
const (
	CodeFailed         = "failed"
	CodeInvalidFormat  = "invalid_format"
	CodeUnknownCommand = "unknown_command"
	CodeInternalError  = "internal_error"
	CodeRateLimited    = "rate_limited"
)

// CommandSubscribe registers the sending client for document pushes.
const CommandSubscribe = Namespace + "/subscribe"

// Request is the header every inbound command carries. Command fields sit
// alongside id and type at the top level of the same object.
type Request struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type Response struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(id int64, result any) Response {
	return Response{ID: id, Type: "result", Success: true, Result: result}
}

func Failure(id int64, code, message string) Response {
	return Response{ID: id, Type: "result", Error: &Error{Code: code, Message: message}}
}

// Event is pushed to a subscribed client after each change.
type Event struct {
	ID    int64     `json:"id"`
	Type  string    `json:"type"`
	Event EventData `json:"event"`
}

type EventData struct {
	Data json.RawMessage `json:"data"`
}

func NewEvent(id int64, data json.RawMessage) Event {
	return Event{ID: id, Type: "event", Event: EventData{Data: data}}
}
