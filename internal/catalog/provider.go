// Package catalog supplies categories and quizzes to the rest of the service.
package catalog

import (
	"context"
	"errors"

	"github.com/quizmaster/quizmaster-backend/internal/model"
)

// ErrNotFound is returned when a category or quiz does not exist. It is a
// terminal condition and never retried.
var ErrNotFound = errors.New("not found")

// Provider is the source of category and quiz definitions.
//
// Category keys match either the category id ("history") or its display
// name ("History"), case-insensitively.
type Provider interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, categoryKey string) (*model.Category, error)
	// GetQuizzesByCategory returns an empty slice, not an error, for an
	// unknown or empty category.
	GetQuizzesByCategory(ctx context.Context, categoryKey string) ([]model.QuizSummary, error)
	GetQuizByID(ctx context.Context, quizID string) (*model.Quiz, error)
}
