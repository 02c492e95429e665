package model

// Category groups quizzes by subject.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	QuizCount   int    `json:"quiz_count" yaml:"quiz_count"`
}

// CategoryOverview holds the aggregate figures shown on a category page.
type CategoryOverview struct {
	AvailableQuizzes     int `json:"available_quizzes"`
	AvgCompletionRate    int `json:"avg_completion_rate"`
	TotalQuestions       int `json:"total_questions"`
	AvgEstimatedTimeMins int `json:"avg_estimated_time_mins"`
}

// CategoryPage is the combined payload for a single category.
type CategoryPage struct {
	Category Category         `json:"category"`
	Overview CategoryOverview `json:"overview"`
	Quizzes  []QuizSummary    `json:"quizzes"`
}
