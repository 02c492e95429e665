package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quizmaster/quizmaster-backend/internal/quiz"
	"github.com/quizmaster/quizmaster-backend/internal/response"
	"github.com/quizmaster/quizmaster-backend/internal/service"
	ws "github.com/quizmaster/quizmaster-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a quiz session: client actions in, state and timer
// ticks out.
type WSHandler struct {
	sessionService *service.SessionService
	tickInterval   time.Duration
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, tickInterval time.Duration, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		tickInterval:   tickInterval,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:session_id/stream
// Accepts select/submit/advance/previous/result/ping actions and pushes a
// tick with the question timer every tick interval until the quiz completes.
func (h *WSHandler) SessionStream(c *gin.Context) {
	id := sessionID(c)

	// Fail before upgrading so the client gets a proper HTTP status.
	view, err := h.sessionService.View(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err, response.ErrSessionNotFound)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", id).Logger()
	wsLog.Info().Msg("Player connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Session: view}); err != nil {
		return
	}

	tickerDone := make(chan struct{})
	go func() {
		defer close(tickerDone)
		h.runTicker(ctx, conn, id, wsLog)
	}()
	defer func() {
		cancel()
		<-tickerDone
	}()

	for {
		var msg ws.Request
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		if err := h.dispatch(ctx, conn, id, &msg); err != nil {
			wsLog.Debug().Err(err).Msg("Write failed, closing")
			return
		}
	}
}

// dispatch handles one client message. The returned error is a write
// failure; domain errors are reported to the client as error events.
func (h *WSHandler) dispatch(ctx context.Context, conn *ws.Conn, id string, msg *ws.Request) error {
	var action service.Action
	switch msg.Action {
	case ws.ActionPing:
		return conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
	case ws.ActionResult:
		res, err := h.sessionService.Result(ctx, id)
		if err != nil {
			return h.writeServiceError(conn, err)
		}
		return conn.WriteTyped(ws.ResultResponse{Event: ws.EventResult, Result: res})
	case ws.ActionSelect:
		if msg.OptionIndex == nil {
			return conn.WriteErrorMessage(response.ErrValidation, "option_index is required")
		}
		action = service.ActionSelect(*msg.OptionIndex)
	case ws.ActionSubmit:
		action = service.ActionSubmit
	case ws.ActionAdvance:
		action = service.ActionAdvance
	case ws.ActionPrevious:
		action = service.ActionPrevious
	default:
		return conn.WriteErrorMessage(response.ErrUnknownAction, "unknown action: "+string(msg.Action))
	}

	res, err := h.sessionService.Apply(ctx, id, action)
	if err != nil {
		return h.writeServiceError(conn, err)
	}
	applied := res.Applied
	return conn.WriteTyped(ws.StateResponse{
		Event:   ws.EventState,
		Action:  msg.Action,
		Applied: &applied,
		Session: res.Session,
	})
}

func (h *WSHandler) runTicker(ctx context.Context, conn *ws.Conn, id string, log zerolog.Logger) {
	probe := func(ctx context.Context) (time.Duration, bool, error) {
		return h.sessionService.Elapsed(ctx, id)
	}
	emit := func(elapsed time.Duration) {
		_ = conn.WriteTyped(ws.TickResponse{
			Event:     ws.EventTick,
			ElapsedMs: elapsed.Milliseconds(),
			Elapsed:   quiz.FormatDuration(elapsed),
		})
	}

	err := quiz.RunTicker(ctx, h.tickInterval, probe, emit)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Debug().Err(err).Msg("Ticker stopped")
	}
}

func (h *WSHandler) writeServiceError(conn *ws.Conn, err error) error {
	status, code := classify(err, response.ErrSessionNotFound)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Stream action failed")
	}
	return conn.WriteError(code)
}
