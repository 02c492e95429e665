package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/model"
	"github.com/quizmaster/quizmaster-backend/internal/store"
	"github.com/rs/zerolog"
)

const testCatalog = `
categories:
  - {id: general, name: General, description: Mixed questions, icon: "?", quiz_count: 1}
listings:
  general:
    - {id: trio, title: Trio, description: Three questions, difficulty: easy, question_count: 3, estimated_time: 2, completion_rate: 50}
quizzes:
  - id: trio
    title: Trio
    description: Three questions
    category: General
    difficulty: easy
    estimated_time: 2
    questions:
      - {id: q1, prompt: One, options: [a, b, c], correct_option_index: 0, explanation: First, difficulty: easy, points: 5}
      - {id: q2, prompt: Two, options: [a, b, c], correct_option_index: 1, explanation: Second, difficulty: easy, points: 5}
      - {id: q3, prompt: Three, options: [a, b, c], correct_option_index: 2, explanation: Third, difficulty: easy, points: 5}
`

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeSink struct {
	mu      sync.Mutex
	records []*model.ResultRecord
	err     error
}

func (f *fakeSink) Enqueue(_ context.Context, rec *model.ResultRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type fixture struct {
	svc   *SessionService
	clock *fakeClock
	sink  *fakeSink
	store *store.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	provider, err := catalog.ParseStatic([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	st := store.NewMemory(time.Hour, clock.Now)
	sink := &fakeSink{}
	tokens := NewTokenService("test-secret", time.Hour)
	tokens.now = clock.Now

	svc := NewSessionService(provider, st, tokens, sink, zerolog.Nop())
	svc.now = clock.Now
	return &fixture{svc: svc, clock: clock, sink: sink, store: st}
}

func (f *fixture) mustApply(t *testing.T, id string, a Action) *model.TransitionResponse {
	t.Helper()
	res, err := f.svc.Apply(context.Background(), id, a)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return res
}

func TestCreateUnknownQuiz(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), "nonexistent")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected catalog.ErrNotFound, got %v", err)
	}
	if len(f.sink.records) != 0 {
		t.Errorf("nothing should be recorded")
	}
}

func TestCreateIssuesTokenForSession(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), "trio")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := f.svc.tokens.Validate(created.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != created.SessionID || claims.QuizID != "trio" {
		t.Errorf("claims = %+v", claims)
	}
	v := created.Session
	if v.CurrentIndex != 0 || v.TotalQuestions != 3 || v.PendingSelection != nil || v.Submitted != nil || v.IsComplete {
		t.Errorf("unexpected initial view: %+v", v)
	}
}

func TestFullRunRecordsResultOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, _ := f.svc.Create(ctx, "trio")
	id := created.SessionID

	picks := []int{0, 2, 2} // right, wrong, right
	for i, pick := range picks {
		f.clock.Add(2 * time.Second)
		if r := f.mustApply(t, id, ActionSelect(pick)); !r.Applied {
			t.Fatalf("select %d not applied", i)
		}
		r := f.mustApply(t, id, ActionSubmit)
		if !r.Applied || r.Session.Submitted == nil {
			t.Fatalf("submit %d not applied", i)
		}
		if r.Session.Submitted.Explanation == "" {
			t.Errorf("explanation should be visible after submit")
		}
		if i < 2 {
			if _, err := f.svc.Result(ctx, id); !errors.Is(err, ErrSessionNotComplete) {
				t.Fatalf("expected ErrSessionNotComplete, got %v", err)
			}
		}
		f.mustApply(t, id, ActionAdvance)
	}

	res, err := f.svc.Result(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if res.CorrectCount != 2 || res.TotalAnswered != 3 || res.ScorePercent != 67 || res.PointsEarned != 20 {
		t.Errorf("result = %+v", res)
	}
	if res.TotalTimeMs != 6000 {
		t.Errorf("TotalTimeMs = %d, want 6000", res.TotalTimeMs)
	}

	// Further transitions are no-ops and do not enqueue again.
	if r := f.mustApply(t, id, ActionAdvance); r.Applied {
		t.Error("advance after completion applied")
	}
	if r := f.mustApply(t, id, ActionSelect(1)); r.Applied {
		t.Error("select after completion applied")
	}
	if len(f.sink.records) != 1 {
		t.Fatalf("enqueued %d results, want 1", len(f.sink.records))
	}
	if rec := f.sink.records[0]; rec.QuizID != "trio" || rec.SessionID.String() != id || rec.Result.ScorePercent != 67 {
		t.Errorf("record = %+v", rec)
	}
}

func TestInvalidTransitionReportsNotApplied(t *testing.T) {
	f := newFixture(t)
	created, _ := f.svc.Create(context.Background(), "trio")

	r := f.mustApply(t, created.SessionID, ActionSubmit)
	if r.Applied {
		t.Fatal("submit without selection applied")
	}
	if r.Session.AnsweredCount != 0 {
		t.Errorf("answered = %d", r.Session.AnsweredCount)
	}
	if r := f.mustApply(t, created.SessionID, ActionSelect(9)); r.Applied {
		t.Error("out of range select applied")
	}
	if r := f.mustApply(t, created.SessionID, ActionPrevious); r.Applied {
		t.Error("previous on first question applied")
	}
}

func TestViewHidesAnswerUntilSubmitted(t *testing.T) {
	f := newFixture(t)
	created, _ := f.svc.Create(context.Background(), "trio")
	r := f.mustApply(t, created.SessionID, ActionSelect(1))
	if r.Session.Submitted != nil {
		t.Fatal("feedback exposed before submit")
	}
	if r.Session.PendingSelection == nil || *r.Session.PendingSelection != 1 {
		t.Errorf("pending = %v", r.Session.PendingSelection)
	}
}

func TestSessionErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.View(ctx, "not-a-uuid"); !errors.Is(err, ErrInvalidSessionID) {
		t.Errorf("expected ErrInvalidSessionID, got %v", err)
	}
	if _, err := f.svc.View(ctx, "6f1d3c1e-0f6b-4d8e-9d4c-2a6c0e6f8b11"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	created, _ := f.svc.Create(ctx, "trio")
	if err := f.svc.Discard(ctx, created.SessionID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.View(ctx, created.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("discarded session still visible: %v", err)
	}
}

func TestEnqueueFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.sink.err = errors.New("redis down")
	ctx := context.Background()
	created, _ := f.svc.Create(ctx, "trio")
	id := created.SessionID

	for i := 0; i < 3; i++ {
		f.mustApply(t, id, ActionSelect(0))
		f.mustApply(t, id, ActionSubmit)
		f.mustApply(t, id, ActionAdvance)
	}
	if _, err := f.svc.Result(ctx, id); err != nil {
		t.Fatalf("session should be complete: %v", err)
	}
}

func TestElapsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, _ := f.svc.Create(ctx, "trio")

	f.clock.Add(1500 * time.Millisecond)
	elapsed, done, err := f.svc.Elapsed(ctx, created.SessionID)
	if err != nil || done {
		t.Fatalf("elapsed: %v done=%v", err, done)
	}
	if elapsed != 1500*time.Millisecond {
		t.Errorf("elapsed = %v", elapsed)
	}
}

func TestConcurrentSubmitsAppendOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, _ := f.svc.Create(ctx, "trio")
	id := created.SessionID
	f.mustApply(t, id, ActionSelect(0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Apply(ctx, id, ActionSubmit)
		}()
	}
	wg.Wait()

	v, _ := f.svc.View(ctx, id)
	if v.AnsweredCount != 1 {
		t.Fatalf("answered = %d, want 1", v.AnsweredCount)
	}
	if f.svc.locks.size() != 0 {
		t.Errorf("lock entries leaked")
	}
}
