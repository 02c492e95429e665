package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/model"
	"github.com/quizmaster/quizmaster-backend/internal/quiz"
	"github.com/quizmaster/quizmaster-backend/internal/store"
	"github.com/rs/zerolog"
)

// Session errors.
var (
	ErrInvalidSessionID   = errors.New("invalid session id")
	ErrSessionNotFound    = errors.New("quiz session not found")
	ErrSessionNotComplete = errors.New("quiz session is not complete")
)

// ResultSink receives the result of every session that completes.
type ResultSink interface {
	Enqueue(ctx context.Context, rec *model.ResultRecord) error
}

// Action is one controller transition.
type Action func(s *quiz.Session) bool

// Transitions exposed to the presentation layers.
var (
	ActionSubmit   Action = (*quiz.Session).SubmitAnswer
	ActionAdvance  Action = (*quiz.Session).Advance
	ActionPrevious Action = (*quiz.Session).GoToPrevious
)

// ActionSelect chooses an option of the current question.
func ActionSelect(optionIndex int) Action {
	return func(s *quiz.Session) bool { return s.SelectOption(optionIndex) }
}

// SessionService owns quiz sessions: it loads one from the store, applies a
// single transition under a per-session lock and saves it back.
type SessionService struct {
	provider catalog.Provider
	store    store.Store
	tokens   *TokenService
	results  ResultSink
	now      quiz.Clock
	locks    *keyedMutex
	log      zerolog.Logger
}

// NewSessionService creates a new SessionService. results may be nil.
func NewSessionService(
	provider catalog.Provider,
	st store.Store,
	tokens *TokenService,
	results ResultSink,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		provider: provider,
		store:    st,
		tokens:   tokens,
		results:  results,
		now:      time.Now,
		locks:    newKeyedMutex(),
		log:      log.With().Str("component", "session_service").Logger(),
	}
}

// Create opens a session on a quiz. A missing quiz fails with
// catalog.ErrNotFound before any session exists.
func (s *SessionService) Create(ctx context.Context, quizID string) (*model.SessionCreated, error) {
	q, err := s.provider.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	sess, err := quiz.New(q, s.now)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	token, expiresAt, err := s.tokens.Issue(id, q.ID)
	if err != nil {
		return nil, err
	}

	rec := &store.Record{Snapshot: sess.Snapshot(), CreatedAt: s.now().UTC()}
	if err := s.store.Save(ctx, id, rec); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info().Str("session_id", id).Str("quiz_id", q.ID).Msg("Session created")

	return &model.SessionCreated{
		SessionID: id,
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   sess.View(id),
	}, nil
}

// View returns the current state of a session.
func (s *SessionService) View(ctx context.Context, sessionID string) (*model.SessionView, error) {
	sess, _, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.View(sessionID), nil
}

// Apply runs one transition. A transition whose preconditions do not hold
// is not an error: the response reports applied=false with the unchanged
// state.
func (s *SessionService) Apply(ctx context.Context, sessionID string, action Action) (*model.TransitionResponse, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, rec, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	wasComplete := sess.IsComplete()
	applied := action(sess)
	if applied {
		rec.Snapshot = sess.Snapshot()
		if err := s.store.Save(ctx, sessionID, rec); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	if !wasComplete && sess.IsComplete() {
		s.recordResult(ctx, sessionID, sess)
	}

	return &model.TransitionResponse{Applied: applied, Session: sess.View(sessionID)}, nil
}

func (s *SessionService) Select(ctx context.Context, sessionID string, optionIndex int) (*model.TransitionResponse, error) {
	return s.Apply(ctx, sessionID, ActionSelect(optionIndex))
}

func (s *SessionService) Submit(ctx context.Context, sessionID string) (*model.TransitionResponse, error) {
	return s.Apply(ctx, sessionID, ActionSubmit)
}

func (s *SessionService) Advance(ctx context.Context, sessionID string) (*model.TransitionResponse, error) {
	return s.Apply(ctx, sessionID, ActionAdvance)
}

func (s *SessionService) Previous(ctx context.Context, sessionID string) (*model.TransitionResponse, error) {
	return s.Apply(ctx, sessionID, ActionPrevious)
}

// Result returns the score of a completed session.
func (s *SessionService) Result(ctx context.Context, sessionID string) (*model.QuizResult, error) {
	sess, _, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	res, ok := sess.ComputeResult()
	if !ok {
		return nil, ErrSessionNotComplete
	}
	return &res, nil
}

// Elapsed reads the time spent on the current question without changing
// the session. done is true once the session is complete.
func (s *SessionService) Elapsed(ctx context.Context, sessionID string) (time.Duration, bool, error) {
	sess, _, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, true, err
	}
	return sess.Elapsed(), sess.IsComplete(), nil
}

// Discard removes a session.
func (s *SessionService) Discard(ctx context.Context, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return ErrInvalidSessionID
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info().Str("session_id", sessionID).Msg("Session discarded")
	return nil
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func (s *SessionService) load(ctx context.Context, sessionID string) (*quiz.Session, *store.Record, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, nil, ErrInvalidSessionID
	}

	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}

	q, err := s.provider.GetQuizByID(ctx, rec.Snapshot.QuizID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			// The quiz was removed from the catalog after the session began.
			return nil, nil, fmt.Errorf("%w: quiz %s no longer exists", ErrSessionNotFound, rec.Snapshot.QuizID)
		}
		return nil, nil, err
	}

	sess, err := quiz.Restore(q, rec.Snapshot, s.now)
	if err != nil {
		return nil, nil, fmt.Errorf("restore session %s: %w", sessionID, err)
	}
	return sess, rec, nil
}

func (s *SessionService) recordResult(ctx context.Context, sessionID string, sess *quiz.Session) {
	res, _ := sess.ComputeResult()
	s.log.Info().
		Str("session_id", sessionID).
		Str("quiz_id", sess.Quiz().ID).
		Int("score_percent", res.ScorePercent).
		Int("correct", res.CorrectCount).
		Int("answered", res.TotalAnswered).
		Msg("Session completed")

	if s.results == nil {
		return
	}
	id, _ := uuid.Parse(sessionID)
	rec := &model.ResultRecord{
		SessionID:   id,
		QuizID:      sess.Quiz().ID,
		Category:    sess.Quiz().Category,
		Result:      res,
		CompletedAt: s.now().UTC(),
	}
	if err := s.results.Enqueue(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to enqueue result")
	}
}
