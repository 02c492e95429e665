package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/config"
	"github.com/quizmaster/quizmaster-backend/internal/handler"
	"github.com/quizmaster/quizmaster-backend/internal/middleware"
	"github.com/quizmaster/quizmaster-backend/internal/model"
	"github.com/quizmaster/quizmaster-backend/internal/response"
	"github.com/quizmaster/quizmaster-backend/internal/service"
	"github.com/quizmaster/quizmaster-backend/internal/store"
	"github.com/quizmaster/quizmaster-backend/internal/validator"
	"github.com/rs/zerolog"
)

type fakeStats struct{}

func (fakeStats) StatsByQuiz(_ context.Context, quizID string) (*model.QuizStats, error) {
	return &model.QuizStats{QuizID: quizID, Attempts: 3, AvgScorePercent: 70, BestScore: 90}, nil
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	validator.Setup()
	log := zerolog.Nop()

	provider, err := catalog.NewStatic()
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{GinMode: gin.TestMode, TickInterval: 20 * time.Millisecond}
	tokens := service.NewTokenService("test-secret", time.Hour)
	sessions := service.NewSessionService(provider, store.NewMemory(time.Hour, nil), tokens, nil, log)

	handlers := &Handlers{
		Catalog: handler.NewCatalogHandler(service.NewCatalogService(provider), service.NewStatsService(provider, fakeStats{}), log),
		Session: handler.NewSessionHandler(sessions, log),
		WS:      handler.NewWSHandler(sessions, cfg.TickInterval, log, nil),
		System:  handler.NewSystemHandler(nil, nil, log),
	}
	limiter := middleware.NewRateLimiter(nil, "sessions", 100, time.Minute, log)
	return &testAPI{t: t, engine: SetupRouter(tokens, limiter, handlers, cfg, log)}
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		a.t.Fatalf("%s %s: invalid body %q", method, path, w.Body.String())
	}
	return w.Code, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func (a *testAPI) createSession(quizID string) model.SessionCreated {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/sessions", "", map[string]string{"quiz_id": quizID})
	if code != http.StatusCreated {
		a.t.Fatalf("create session: %d %+v", code, env.Error)
	}
	var created model.SessionCreated
	decode(a.t, env.Data, &created)
	return created
}

func TestCatalogRoutes(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodGet, "/api/v1/categories", "", nil)
	var cats struct {
		Categories []model.Category `json:"categories"`
	}
	decode(t, env.Data, &cats)
	if code != http.StatusOK || len(cats.Categories) != 6 {
		t.Fatalf("categories: %d, %d items", code, len(cats.Categories))
	}

	code, env = api.do(http.MethodGet, "/api/v1/categories/Science", "", nil)
	var page model.CategoryPage
	decode(t, env.Data, &page)
	if code != http.StatusOK || page.Overview.AvailableQuizzes != 3 {
		t.Errorf("category page: %d %+v", code, page.Overview)
	}

	code, env = api.do(http.MethodGet, "/api/v1/categories/Unknown", "", nil)
	if code != http.StatusNotFound || env.Error.Code != response.ErrCategoryNotFound {
		t.Errorf("unknown category: %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodGet, "/api/v1/categories/Unknown/quizzes", "", nil)
	var list struct {
		Quizzes []model.QuizSummary `json:"quizzes"`
	}
	decode(t, env.Data, &list)
	if code != http.StatusOK || list.Quizzes == nil || len(list.Quizzes) != 0 {
		t.Errorf("unknown category listing: %d %s", code, env.Data)
	}

	code, env = api.do(http.MethodGet, "/api/v1/quizzes/nonexistent", "", nil)
	if code != http.StatusNotFound || env.Error.Code != response.ErrQuizNotFound {
		t.Errorf("missing quiz: %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodGet, "/api/v1/quizzes/prog-javascript-fundamentals", "", nil)
	if code != http.StatusOK || strings.Contains(string(env.Data), "correct_option_index") || strings.Contains(string(env.Data), "explanation") {
		t.Errorf("quiz payload leaks answers: %d %s", code, env.Data)
	}

	code, env = api.do(http.MethodGet, "/api/v1/quizzes/prog-javascript-fundamentals/stats", "", nil)
	var stats model.QuizStats
	decode(t, env.Data, &stats)
	if code != http.StatusOK || stats.Attempts != 3 {
		t.Errorf("stats: %d %+v", code, stats)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, "/api/v1/sessions", "", map[string]string{})
	if code != http.StatusBadRequest || env.Error.Fields["quiz_id"] == "" {
		t.Errorf("missing quiz_id: %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodPost, "/api/v1/sessions", "", map[string]string{"quiz_id": "nonexistent"})
	if code != http.StatusNotFound || env.Error.Code != response.ErrQuizNotFound {
		t.Errorf("unknown quiz: %d %+v", code, env.Error)
	}
}

func TestSessionFlow(t *testing.T) {
	api := newTestAPI(t)
	created := api.createSession("prog-javascript-fundamentals")
	base := "/api/v1/sessions/" + created.SessionID

	if code, env := api.do(http.MethodGet, base, "", nil); code != http.StatusUnauthorized || env.Error.Code != response.ErrTokenRequired {
		t.Fatalf("no token: %d", code)
	}

	code, env := api.do(http.MethodGet, base+"/result", created.Token, nil)
	if code != http.StatusConflict || env.Error.Code != response.ErrSessionNotComplete {
		t.Fatalf("early result: %d %+v", code, env.Error)
	}

	// Submitting without a selection is reported, not rejected.
	code, env = api.do(http.MethodPost, base+"/submit", created.Token, nil)
	var tr model.TransitionResponse
	decode(t, env.Data, &tr)
	if code != http.StatusOK || tr.Applied {
		t.Fatalf("empty submit: %d applied=%v", code, tr.Applied)
	}

	total := created.Session.TotalQuestions
	correct := 0
	for i := 0; i < total; i++ {
		_, env = api.do(http.MethodPost, base+"/select", created.Token, map[string]int{"option_index": 0})
		tr = model.TransitionResponse{}
		decode(t, env.Data, &tr)
		if !tr.Applied || tr.Session.Submitted != nil {
			t.Fatalf("select %d: %+v", i, tr)
		}

		_, env = api.do(http.MethodPost, base+"/submit", created.Token, nil)
		tr = model.TransitionResponse{}
		decode(t, env.Data, &tr)
		if !tr.Applied || tr.Session.Submitted == nil {
			t.Fatalf("submit %d not applied", i)
		}
		if tr.Session.Submitted.IsCorrect {
			correct++
		}

		_, env = api.do(http.MethodPost, base+"/advance", created.Token, nil)
		tr = model.TransitionResponse{}
		decode(t, env.Data, &tr)
		if !tr.Applied {
			t.Fatalf("advance %d not applied", i)
		}
	}
	if !tr.Session.IsComplete {
		t.Fatal("session should be complete")
	}

	code, env = api.do(http.MethodGet, base+"/result", created.Token, nil)
	var res model.QuizResult
	decode(t, env.Data, &res)
	if code != http.StatusOK || res.TotalAnswered != total || res.CorrectCount != correct || res.PointsEarned != correct*10 {
		t.Errorf("result: %d %+v (correct %d of %d)", code, res, correct, total)
	}

	if code, _ := api.do(http.MethodDelete, base, created.Token, nil); code != http.StatusOK {
		t.Errorf("discard: %d", code)
	}
	if code, env := api.do(http.MethodGet, base, created.Token, nil); code != http.StatusNotFound || env.Error.Code != response.ErrSessionNotFound {
		t.Errorf("after discard: %d", code)
	}
}

func TestSessionTokenScope(t *testing.T) {
	api := newTestAPI(t)
	a := api.createSession("hist-ww2-timeline")
	b := api.createSession("hist-ww2-timeline")

	code, env := api.do(http.MethodGet, "/api/v1/sessions/"+a.SessionID, b.Token, nil)
	if code != http.StatusForbidden || env.Error.Code != response.ErrForbidden {
		t.Errorf("cross-session token: %d %+v", code, env.Error)
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	code, env := api.do(http.MethodGet, "/health", "", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"status":"ok"`) {
		t.Errorf("health: %d %s", code, env.Data)
	}
}

func TestSessionStream(t *testing.T) {
	api := newTestAPI(t)
	created := api.createSession("sci-physics-fundamentals")

	srv := httptest.NewServer(api.engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/sessions/" + created.SessionID + "/stream?token=" + created.Token
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// readUntil skips tick events, which arrive on their own schedule.
	readUntil := func(event string) map[string]json.RawMessage {
		t.Helper()
		for {
			var msg map[string]json.RawMessage
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("read waiting for %s: %v", event, err)
			}
			var got string
			_ = json.Unmarshal(msg["event"], &got)
			if got == event {
				return msg
			}
			if got != "tick" {
				t.Fatalf("expected %s, got %s", event, got)
			}
		}
	}

	readUntil("state")

	sawTick := false
	for !sawTick {
		var msg map[string]json.RawMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		sawTick = strings.Contains(string(msg["event"]), "tick")
	}

	_ = conn.WriteJSON(map[string]interface{}{"action": "select", "option_index": 1})
	msg := readUntil("state")
	if string(msg["applied"]) != "true" {
		t.Errorf("select applied = %s", msg["applied"])
	}

	_ = conn.WriteJSON(map[string]string{"action": "ping"})
	readUntil("pong")

	_ = conn.WriteJSON(map[string]string{"action": "result"})
	msg = readUntil("error")
	if !strings.Contains(string(msg["code"]), string(response.ErrSessionNotComplete)) {
		t.Errorf("early result code = %s", msg["code"])
	}

	_ = conn.WriteJSON(map[string]string{"action": "dance"})
	msg = readUntil("error")
	if !strings.Contains(string(msg["code"]), string(response.ErrUnknownAction)) {
		t.Errorf("unknown action code = %s", msg["code"])
	}
}

func TestSessionStreamRequiresToken(t *testing.T) {
	api := newTestAPI(t)
	created := api.createSession("sci-physics-fundamentals")

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/v1/sessions/"+created.SessionID+"/stream", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
}
