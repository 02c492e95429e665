package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizmaster/quizmaster-backend/internal/middleware"
	"github.com/quizmaster/quizmaster-backend/internal/model"
	"github.com/quizmaster/quizmaster-backend/internal/response"
	"github.com/quizmaster/quizmaster-backend/internal/service"
	"github.com/quizmaster/quizmaster-backend/internal/validator"
	"github.com/rs/zerolog"
)

// SessionHandler drives quiz sessions over HTTP.
type SessionHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

// CreateSession godoc
// POST /api/v1/sessions
// Starts a quiz. The returned token authorizes every later call on the session.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.sessionService.Create(c.Request.Context(), req.QuizID)
	if err != nil {
		failWith(c, h.log, err, response.ErrQuizNotFound)
		return
	}
	response.Success(c, http.StatusCreated, created)
}

// GetSession godoc
// GET /api/v1/sessions/:session_id
func (h *SessionHandler) GetSession(c *gin.Context) {
	view, err := h.sessionService.View(c.Request.Context(), sessionID(c))
	if err != nil {
		failWith(c, h.log, err, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// SelectOption godoc
// POST /api/v1/sessions/:session_id/select
func (h *SessionHandler) SelectOption(c *gin.Context) {
	var req model.SelectOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.transition(c, service.ActionSelect(*req.OptionIndex))
}

// SubmitAnswer godoc
// POST /api/v1/sessions/:session_id/submit
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	h.transition(c, service.ActionSubmit)
}

// Advance godoc
// POST /api/v1/sessions/:session_id/advance
func (h *SessionHandler) Advance(c *gin.Context) {
	h.transition(c, service.ActionAdvance)
}

// GoToPrevious godoc
// POST /api/v1/sessions/:session_id/previous
func (h *SessionHandler) GoToPrevious(c *gin.Context) {
	h.transition(c, service.ActionPrevious)
}

// GetResult godoc
// GET /api/v1/sessions/:session_id/result
// Answers 409 until the last question has been advanced past.
func (h *SessionHandler) GetResult(c *gin.Context) {
	res, err := h.sessionService.Result(c.Request.Context(), sessionID(c))
	if err != nil {
		failWith(c, h.log, err, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// DiscardSession godoc
// DELETE /api/v1/sessions/:session_id
func (h *SessionHandler) DiscardSession(c *gin.Context) {
	if err := h.sessionService.Discard(c.Request.Context(), sessionID(c)); err != nil {
		failWith(c, h.log, err, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"discarded": true})
}

// transition applies an action. Rejected transitions still answer 200 with
// applied=false.
func (h *SessionHandler) transition(c *gin.Context, action service.Action) {
	res, err := h.sessionService.Apply(c.Request.Context(), sessionID(c), action)
	if err != nil {
		failWith(c, h.log, err, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func sessionID(c *gin.Context) string {
	return c.Param(middleware.SessionIDParam)
}
