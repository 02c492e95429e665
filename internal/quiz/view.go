package quiz

import "github.com/quizmaster/quizmaster-backend/internal/model"

// View renders the session for a presentation layer. The correct option and
// explanation are only included once the current question is submitted.
func (s *Session) View(sessionID string) *model.SessionView {
	q := s.CurrentQuestion()
	v := &model.SessionView{
		SessionID:       sessionID,
		QuizID:          s.quiz.ID,
		QuizTitle:       s.quiz.Title,
		Category:        s.quiz.Category,
		CurrentIndex:    s.currentIndex,
		TotalQuestions:  len(s.quiz.Questions),
		ProgressPercent: s.Progress(),
		Question:        q.ForPlayer(),
		AnsweredCount:   len(s.answered),
		IsLastQuestion:  s.IsLastQuestion(),
		CanGoBack:       s.CanGoBack(),
		IsComplete:      s.isComplete,
		ElapsedMs:       s.Elapsed().Milliseconds(),
		QuestionStarted: s.questionStartedAt,
	}

	if p, ok := s.PendingSelection(); ok {
		v.PendingSelection = &p
	}

	if a, ok := s.CurrentAnswer(); ok {
		v.Submitted = &model.SubmittedAnswer{
			SelectedOptionIndex: a.SelectedOptionIndex,
			CorrectOptionIndex:  q.CorrectOptionIndex,
			IsCorrect:           a.IsCorrect,
			Explanation:         q.Explanation,
			ResponseTimeMs:      a.ResponseTimeMs,
		}
	}
	return v
}
