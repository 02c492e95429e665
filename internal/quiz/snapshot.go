package quiz

import (
	"fmt"
	"time"

	"github.com/quizmaster/quizmaster-backend/internal/model"
)

// Snapshot is the serializable state of a Session. The quiz itself is
// referenced by id and re-attached on Restore.
type Snapshot struct {
	QuizID            string                   `json:"quiz_id"`
	CurrentIndex      int                      `json:"current_index"`
	PendingSelection  *int                     `json:"pending_selection,omitempty"`
	Answered          []model.AnsweredQuestion `json:"answered"`
	IsComplete        bool                     `json:"is_complete"`
	QuestionStartedAt time.Time                `json:"question_started_at"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		QuizID:            s.quiz.ID,
		CurrentIndex:      s.currentIndex,
		Answered:          s.Answered(),
		IsComplete:        s.isComplete,
		QuestionStartedAt: s.questionStartedAt,
	}
	if s.pendingSelection != nil {
		p := *s.pendingSelection
		snap.PendingSelection = &p
	}
	return snap
}

// Restore rebuilds a session from a snapshot taken on the same quiz.
func Restore(q *model.Quiz, snap Snapshot, now Clock) (*Session, error) {
	s, err := New(q, now)
	if err != nil {
		return nil, err
	}
	if snap.QuizID != q.ID {
		return nil, fmt.Errorf("snapshot belongs to quiz %s, not %s", snap.QuizID, q.ID)
	}
	if snap.CurrentIndex < 0 || snap.CurrentIndex >= len(q.Questions) {
		return nil, fmt.Errorf("snapshot index %d out of range", snap.CurrentIndex)
	}

	known := make(map[string]struct{}, len(q.Questions))
	for i := range q.Questions {
		known[q.Questions[i].ID] = struct{}{}
	}
	for _, a := range snap.Answered {
		if _, ok := known[a.QuestionID]; !ok {
			return nil, fmt.Errorf("snapshot answers unknown question %s", a.QuestionID)
		}
	}

	s.currentIndex = snap.CurrentIndex
	s.isComplete = snap.IsComplete
	s.questionStartedAt = snap.QuestionStartedAt
	s.answered = append(s.answered, snap.Answered...)
	if snap.PendingSelection != nil && q.Questions[snap.CurrentIndex].HasOption(*snap.PendingSelection) {
		p := *snap.PendingSelection
		s.pendingSelection = &p
	}
	return s, nil
}
