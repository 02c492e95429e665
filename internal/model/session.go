package model

import "time"

// AnsweredQuestion records one submitted answer within a session.
type AnsweredQuestion struct {
	QuestionID          string `json:"question_id"`
	SelectedOptionIndex int    `json:"selected_option_index"`
	IsCorrect           bool   `json:"is_correct"`
	ResponseTimeMs      int64  `json:"response_time_ms"`
}

// SubmittedAnswer is the feedback shown once the current question is submitted.
type SubmittedAnswer struct {
	SelectedOptionIndex int    `json:"selected_option_index"`
	CorrectOptionIndex  int    `json:"correct_option_index"`
	IsCorrect           bool   `json:"is_correct"`
	Explanation         string `json:"explanation,omitempty"`
	ResponseTimeMs      int64  `json:"response_time_ms"`
}

// SessionView is the presentation state of a quiz session.
type SessionView struct {
	SessionID        string            `json:"session_id"`
	QuizID           string            `json:"quiz_id"`
	QuizTitle        string            `json:"quiz_title"`
	Category         string            `json:"category"`
	CurrentIndex     int               `json:"current_index"`
	TotalQuestions   int               `json:"total_questions"`
	ProgressPercent  int               `json:"progress_percent"`
	Question         QuestionForPlayer `json:"question"`
	PendingSelection *int              `json:"pending_selection"`
	Submitted        *SubmittedAnswer  `json:"submitted,omitempty"`
	AnsweredCount    int               `json:"answered_count"`
	IsLastQuestion   bool              `json:"is_last_question"`
	CanGoBack        bool              `json:"can_go_back"`
	IsComplete       bool              `json:"is_complete"`
	ElapsedMs        int64             `json:"elapsed_ms"`
	QuestionStarted  time.Time         `json:"question_started_at"`
}

// TransitionResponse wraps a session view with whether the requested
// transition changed anything.
type TransitionResponse struct {
	Applied bool         `json:"applied"`
	Session *SessionView `json:"session"`
}

// SessionCreated is returned when a new session is opened.
type SessionCreated struct {
	SessionID string       `json:"session_id"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Session   *SessionView `json:"session"`
}

// CreateSessionRequest is the payload for opening a quiz session.
type CreateSessionRequest struct {
	QuizID string `json:"quiz_id" binding:"required,min=1,max=100,slug"`
}

// SelectOptionRequest is the payload for choosing an option.
type SelectOptionRequest struct {
	OptionIndex *int `json:"option_index" binding:"required,min=0,max=25"`
}
