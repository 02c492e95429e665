package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/response"
	"github.com/quizmaster/quizmaster-backend/internal/service"
	"github.com/rs/zerolog"
)

// classify maps a service error onto an HTTP status and error code.
// notFound is the code used for catalog.ErrNotFound, which depends on what
// was looked up.
func classify(err error, notFound response.ErrCode) (int, response.ErrCode) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, notFound
	case errors.Is(err, service.ErrInvalidSessionID):
		return http.StatusBadRequest, response.ErrInvalidID
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, response.ErrSessionNotFound
	case errors.Is(err, service.ErrSessionNotComplete):
		return http.StatusConflict, response.ErrSessionNotComplete
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, response.ErrServiceUnavailable
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

func failWith(c *gin.Context, log zerolog.Logger, err error, notFound response.ErrCode) {
	status, code := classify(err, notFound)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", response.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	response.Fail(c, status, code)
}
