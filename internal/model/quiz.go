package model

import (
	"fmt"
	"time"
)

// Quiz is a full quiz definition including its answer keys.
type Quiz struct {
	ID            string     `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description" yaml:"description"`
	Category      string     `json:"category" yaml:"category"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	EstimatedTime int        `json:"estimated_time" yaml:"estimated_time"`
	Tags          []string   `json:"tags" yaml:"tags"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at"`
	Questions     []Question `json:"questions" yaml:"questions"`
}

// TotalPoints sums the points of every question.
func (q *Quiz) TotalPoints() int {
	total := 0
	for i := range q.Questions {
		total += q.Questions[i].Points
	}
	return total
}

// Validate checks the quiz invariants, including every question.
func (q *Quiz) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("quiz id is required")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %s: at least one question required", q.ID)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("quiz %s: unknown difficulty %q", q.ID, string(q.Difficulty))
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for i := range q.Questions {
		if err := q.Questions[i].Validate(); err != nil {
			return fmt.Errorf("quiz %s: %w", q.ID, err)
		}
		if _, dup := seen[q.Questions[i].ID]; dup {
			return fmt.Errorf("quiz %s: duplicate question id %s", q.ID, q.Questions[i].ID)
		}
		seen[q.Questions[i].ID] = struct{}{}
	}
	return nil
}

// QuizSummary is the listing view of a quiz within a category.
type QuizSummary struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Description    string     `json:"description" yaml:"description"`
	Difficulty     Difficulty `json:"difficulty" yaml:"difficulty"`
	QuestionCount  int        `json:"question_count" yaml:"question_count"`
	EstimatedTime  int        `json:"estimated_time" yaml:"estimated_time"`
	Tags           []string   `json:"tags" yaml:"tags"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
	CompletionRate int        `json:"completion_rate" yaml:"completion_rate"`
}

// QuizForPlayer is the public payload of a quiz, without answer keys.
type QuizForPlayer struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Difficulty    Difficulty          `json:"difficulty"`
	EstimatedTime int                 `json:"estimated_time"`
	Tags          []string            `json:"tags"`
	CreatedAt     time.Time           `json:"created_at"`
	TotalPoints   int                 `json:"total_points"`
	Questions     []QuestionForPlayer `json:"questions"`
}

// ForPlayer converts the quiz into its public payload.
func (q *Quiz) ForPlayer() QuizForPlayer {
	questions := make([]QuestionForPlayer, 0, len(q.Questions))
	for i := range q.Questions {
		questions = append(questions, q.Questions[i].ForPlayer())
	}
	return QuizForPlayer{
		ID:            q.ID,
		Title:         q.Title,
		Description:   q.Description,
		Category:      q.Category,
		Difficulty:    q.Difficulty,
		EstimatedTime: q.EstimatedTime,
		Tags:          q.Tags,
		CreatedAt:     q.CreatedAt,
		TotalPoints:   q.TotalPoints(),
		Questions:     questions,
	}
}
