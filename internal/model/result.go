package model

import (
	"time"

	"github.com/google/uuid"
)

// ScoreBand buckets a score percentage the way the results page colours it.
type ScoreBand string

const (
	ScoreBandExcellent      ScoreBand = "excellent"
	ScoreBandGood           ScoreBand = "good"
	ScoreBandKeepPracticing ScoreBand = "keep_practicing"
)

// QuizResult is the summary of a completed session.
type QuizResult struct {
	CorrectCount  int       `json:"correct_count"`
	TotalAnswered int       `json:"total_answered"`
	ScorePercent  int       `json:"score_percent"`
	PointsEarned  int       `json:"points_earned"`
	TotalTimeMs   int64     `json:"total_time_ms"`
	TotalTime     string    `json:"total_time"`
	Band          ScoreBand `json:"band"`
}

// ResultRecord is the persisted form of a completed session, queued for the
// result worker.
type ResultRecord struct {
	SessionID   uuid.UUID  `json:"session_id"`
	QuizID      string     `json:"quiz_id"`
	Category    string     `json:"category"`
	Result      QuizResult `json:"result"`
	CompletedAt time.Time  `json:"completed_at"`
}

// QuizStats aggregates persisted results for one quiz.
type QuizStats struct {
	QuizID          string  `json:"quiz_id"`
	Attempts        int64   `json:"attempts"`
	AvgScorePercent float64 `json:"avg_score_percent"`
	AvgPoints       float64 `json:"avg_points"`
	AvgTotalTimeMs  float64 `json:"avg_total_time_ms"`
	BestScore       int     `json:"best_score_percent"`
}
