// Package quiz implements the state machine of a single quiz attempt.
//
// A Session walks the questions of a quiz in order. For each question the
// player selects an option, submits it, and advances. Every operation
// reports whether it changed the session; a call whose preconditions do not
// hold is ignored and returns false.
package quiz

import (
	"errors"
	"math"
	"time"

	"github.com/quizmaster/quizmaster-backend/internal/model"
)

// PointsPerCorrectAnswer is awarded for each correct answer regardless of
// the question's own points.
const PointsPerCorrectAnswer = 10

// ErrEmptyQuiz is returned when a session is opened for a quiz without questions.
var ErrEmptyQuiz = errors.New("quiz has no questions")

// Clock returns the current time.
type Clock func() time.Time

// Session is the mutable state of one quiz attempt. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	quiz              *model.Quiz
	now               Clock
	currentIndex      int
	pendingSelection  *int
	answered          []model.AnsweredQuestion
	isComplete        bool
	questionStartedAt time.Time
}

// New opens a session on q positioned at the first question.
func New(q *model.Quiz, now Clock) (*Session, error) {
	if q == nil || len(q.Questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	if now == nil {
		now = time.Now
	}
	return &Session{
		quiz:              q,
		now:               now,
		answered:          make([]model.AnsweredQuestion, 0, len(q.Questions)),
		questionStartedAt: now(),
	}, nil
}

func (s *Session) Quiz() *model.Quiz { return s.quiz }

func (s *Session) CurrentIndex() int { return s.currentIndex }

func (s *Session) IsComplete() bool { return s.isComplete }

func (s *Session) QuestionStartedAt() time.Time { return s.questionStartedAt }

// CurrentQuestion returns the question at the current index.
func (s *Session) CurrentQuestion() *model.Question {
	return &s.quiz.Questions[s.currentIndex]
}

// PendingSelection returns the option chosen for the current question but
// not yet submitted.
func (s *Session) PendingSelection() (int, bool) {
	if s.pendingSelection == nil {
		return 0, false
	}
	return *s.pendingSelection, true
}

// Answered returns a copy of the submitted answers in submission order.
func (s *Session) Answered() []model.AnsweredQuestion {
	out := make([]model.AnsweredQuestion, len(s.answered))
	copy(out, s.answered)
	return out
}

// CurrentAnswer returns the recorded answer for the current question, if any.
// A question with a recorded answer is submitted: its explanation is visible
// and it can no longer change.
func (s *Session) CurrentAnswer() (model.AnsweredQuestion, bool) {
	qid := s.CurrentQuestion().ID
	for _, a := range s.answered {
		if a.QuestionID == qid {
			return a, true
		}
	}
	return model.AnsweredQuestion{}, false
}

// IsSubmitted reports whether the current question has been answered.
func (s *Session) IsSubmitted() bool {
	_, ok := s.CurrentAnswer()
	return ok
}

func (s *Session) IsLastQuestion() bool {
	return s.currentIndex == len(s.quiz.Questions)-1
}

// CanGoBack reports whether GoToPrevious would apply.
func (s *Session) CanGoBack() bool {
	return !s.isComplete && s.currentIndex > 0 && !s.IsSubmitted()
}

// Elapsed is the time spent on the current question so far.
func (s *Session) Elapsed() time.Duration {
	d := s.now().Sub(s.questionStartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Progress is the one-based position as a rounded percentage of the quiz.
func (s *Session) Progress() int {
	return int(math.Round(float64(s.currentIndex+1) / float64(len(s.quiz.Questions)) * 100))
}

// SelectOption tentatively chooses an option for the current question.
// Choosing again before submission replaces the earlier choice.
func (s *Session) SelectOption(optionIndex int) bool {
	if s.isComplete || s.IsSubmitted() || !s.CurrentQuestion().HasOption(optionIndex) {
		return false
	}
	s.pendingSelection = &optionIndex
	return true
}

// SubmitAnswer records the pending selection for the current question.
func (s *Session) SubmitAnswer() bool {
	if s.isComplete || s.pendingSelection == nil || s.IsSubmitted() {
		return false
	}

	q := s.CurrentQuestion()
	selected := *s.pendingSelection
	elapsed := s.Elapsed()

	s.answered = append(s.answered, model.AnsweredQuestion{
		QuestionID:          q.ID,
		SelectedOptionIndex: selected,
		IsCorrect:           selected == q.CorrectOptionIndex,
		ResponseTimeMs:      elapsed.Milliseconds(),
	})
	s.pendingSelection = nil
	return true
}

// Advance moves past a submitted question. From the last question it
// completes the session.
func (s *Session) Advance() bool {
	if s.isComplete || !s.IsSubmitted() {
		return false
	}
	if s.IsLastQuestion() {
		s.isComplete = true
		return true
	}
	s.currentIndex++
	s.pendingSelection = nil
	s.questionStartedAt = s.now()
	return true
}

// GoToPrevious steps back one question while the current one is unanswered.
// The previous question keeps its recorded answer and is shown submitted.
func (s *Session) GoToPrevious() bool {
	if !s.CanGoBack() {
		return false
	}
	s.currentIndex--
	s.pendingSelection = nil
	s.questionStartedAt = s.now()
	return true
}

// ComputeResult summarizes a completed session. It does not modify the
// session and returns false until the session is complete.
func (s *Session) ComputeResult() (model.QuizResult, bool) {
	if !s.isComplete {
		return model.QuizResult{}, false
	}
	return Summarize(s.answered), true
}

// Summarize derives the result figures from a list of answers.
func Summarize(answered []model.AnsweredQuestion) model.QuizResult {
	var correct int
	var totalMs int64
	for _, a := range answered {
		if a.IsCorrect {
			correct++
		}
		totalMs += a.ResponseTimeMs
	}

	percent := 0
	if len(answered) > 0 {
		percent = int(math.Round(100 * float64(correct) / float64(len(answered))))
	}

	return model.QuizResult{
		CorrectCount:  correct,
		TotalAnswered: len(answered),
		ScorePercent:  percent,
		PointsEarned:  correct * PointsPerCorrectAnswer,
		TotalTimeMs:   totalMs,
		TotalTime:     FormatDuration(time.Duration(totalMs) * time.Millisecond),
		Band:          BandFor(percent),
	}
}
