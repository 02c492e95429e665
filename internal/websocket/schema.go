package websocket

import "github.com/quizmaster/quizmaster-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect   Action = "select"
	ActionSubmit   Action = "submit"
	ActionAdvance  Action = "advance"
	ActionPrevious Action = "previous"
	ActionResult   Action = "result"
	ActionPing     Action = "ping"
)

// Request is any client message. OptionIndex is only read for select.
type Request struct {
	Action      Action `json:"action"`
	OptionIndex *int   `json:"option_index,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState  Event = "state"
	EventTick   Event = "tick"
	EventResult Event = "result"
	EventPong   Event = "pong"
	EventError  Event = "error"
)

// StateResponse carries the session view. Applied is omitted on the
// initial state sent after connecting.
type StateResponse struct {
	Event   Event              `json:"event"`
	Action  Action             `json:"action,omitempty"`
	Applied *bool              `json:"applied,omitempty"`
	Session *model.SessionView `json:"session"`
}

// TickResponse reports time spent on the current question.
type TickResponse struct {
	Event     Event  `json:"event"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Elapsed   string `json:"elapsed"`
}

type ResultResponse struct {
	Event  Event             `json:"event"`
	Result *model.QuizResult `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
