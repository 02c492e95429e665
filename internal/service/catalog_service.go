package service

import (
	"context"
	"math"

	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/model"
)

// CatalogService serves catalog reads and category overviews.
type CatalogService struct {
	provider catalog.Provider
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(provider catalog.Provider) *CatalogService {
	return &CatalogService{provider: provider}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.provider.GetCategories(ctx)
}

func (s *CatalogService) ListQuizzes(ctx context.Context, categoryKey string) ([]model.QuizSummary, error) {
	return s.provider.GetQuizzesByCategory(ctx, categoryKey)
}

// GetCategoryPage returns a category with its quizzes and overview figures.
func (s *CatalogService) GetCategoryPage(ctx context.Context, categoryKey string) (*model.CategoryPage, error) {
	c, err := s.provider.GetCategory(ctx, categoryKey)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.provider.GetQuizzesByCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &model.CategoryPage{
		Category: *c,
		Overview: Overview(quizzes),
		Quizzes:  quizzes,
	}, nil
}

// GetQuiz returns the public payload of a quiz, without answer keys.
func (s *CatalogService) GetQuiz(ctx context.Context, quizID string) (*model.QuizForPlayer, error) {
	q, err := s.provider.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	payload := q.ForPlayer()
	return &payload, nil
}

// Overview computes the category page figures. Averages of an empty list
// are zero.
func Overview(quizzes []model.QuizSummary) model.CategoryOverview {
	o := model.CategoryOverview{AvailableQuizzes: len(quizzes)}
	if len(quizzes) == 0 {
		return o
	}

	var completion, minutes int
	for _, q := range quizzes {
		completion += q.CompletionRate
		minutes += q.EstimatedTime
		o.TotalQuestions += q.QuestionCount
	}
	n := float64(len(quizzes))
	o.AvgCompletionRate = int(math.Round(float64(completion) / n))
	o.AvgEstimatedTimeMins = int(math.Round(float64(minutes) / n))
	return o
}
