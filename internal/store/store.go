// Package store persists quiz session state between requests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/quizmaster/quizmaster-backend/internal/quiz"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Record is what a store keeps per session.
type Record struct {
	Snapshot  quiz.Snapshot `json:"snapshot"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store keeps session records under their session id. Every Save and Get
// extends the record's lifetime by the store's TTL.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Record, error)
	Save(ctx context.Context, sessionID string, rec *Record) error
	Delete(ctx context.Context, sessionID string) error
}
