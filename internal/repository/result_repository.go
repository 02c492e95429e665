package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizmaster/quizmaster-backend/internal/model"
)

// ResultRepository handles persisted quiz results.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// BulkInsert stores a batch of results with a single UNNEST insert. Rows
// whose session already has a result are skipped, so requeued records are
// harmless.
func (r *ResultRepository) BulkInsert(ctx context.Context, batch []*model.ResultRecord) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	sessionIDs := make([]uuid.UUID, n)
	quizIDs := make([]string, n)
	categories := make([]string, n)
	correct := make([]int32, n)
	answered := make([]int32, n)
	scores := make([]int32, n)
	points := make([]int32, n)
	times := make([]int64, n)
	bands := make([]string, n)
	completedAts := make([]time.Time, n)

	for i, rec := range batch {
		sessionIDs[i] = rec.SessionID
		quizIDs[i] = rec.QuizID
		categories[i] = rec.Category
		correct[i] = int32(rec.Result.CorrectCount)
		answered[i] = int32(rec.Result.TotalAnswered)
		scores[i] = int32(rec.Result.ScorePercent)
		points[i] = int32(rec.Result.PointsEarned)
		times[i] = rec.Result.TotalTimeMs
		bands[i] = string(rec.Result.Band)
		completedAts[i] = rec.CompletedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_results (
			session_id, quiz_id, category, correct_count, total_answered,
			score_percent, points_earned, total_time_ms, band, completed_at
		)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::int[],
			$5::int[],
			$6::int[],
			$7::int[],
			$8::bigint[],
			$9::text[],
			$10::timestamptz[]
		)
		ON CONFLICT (session_id) DO NOTHING`,
		sessionIDs, quizIDs, categories, correct, answered, scores, points, times, bands, completedAts,
	)
	return err
}

// Insert stores one result.
func (r *ResultRepository) Insert(ctx context.Context, rec *model.ResultRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_results (
			session_id, quiz_id, category, correct_count, total_answered,
			score_percent, points_earned, total_time_ms, band, completed_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (session_id) DO NOTHING`,
		rec.SessionID, rec.QuizID, rec.Category, rec.Result.CorrectCount, rec.Result.TotalAnswered,
		rec.Result.ScorePercent, rec.Result.PointsEarned, rec.Result.TotalTimeMs, string(rec.Result.Band), rec.CompletedAt,
	)
	return err
}

// StatsByQuiz aggregates every stored result of a quiz. A quiz without
// results yields zero attempts.
func (r *ResultRepository) StatsByQuiz(ctx context.Context, quizID string) (*model.QuizStats, error) {
	stats := &model.QuizStats{QuizID: quizID}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(score_percent), 0)::float8,
		        COALESCE(AVG(points_earned), 0)::float8,
		        COALESCE(AVG(total_time_ms), 0)::float8,
		        COALESCE(MAX(score_percent), 0)
		 FROM quiz_results
		 WHERE quiz_id = $1`, quizID,
	).Scan(&stats.Attempts, &stats.AvgScorePercent, &stats.AvgPoints, &stats.AvgTotalTimeMs, &stats.BestScore)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
