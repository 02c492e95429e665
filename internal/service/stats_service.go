package service

import (
	"context"

	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/model"
)

// StatsReader reads aggregated quiz results.
type StatsReader interface {
	StatsByQuiz(ctx context.Context, quizID string) (*model.QuizStats, error)
}

// StatsService reports how a quiz has been answered so far.
type StatsService struct {
	provider catalog.Provider
	stats    StatsReader
}

// NewStatsService creates a new StatsService.
func NewStatsService(provider catalog.Provider, stats StatsReader) *StatsService {
	return &StatsService{provider: provider, stats: stats}
}

// QuizStats returns the aggregates of a quiz. Unknown quizzes fail with
// catalog.ErrNotFound.
func (s *StatsService) QuizStats(ctx context.Context, quizID string) (*model.QuizStats, error) {
	if _, err := s.provider.GetQuizByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.stats.StatsByQuiz(ctx, quizID)
}
