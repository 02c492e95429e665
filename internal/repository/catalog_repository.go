package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/model"
)

// CatalogRepository is the PostgreSQL catalog provider.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetCategories lists categories in display order.
func (r *CatalogRepository) GetCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, icon, quiz_count
		 FROM categories
		 ORDER BY sort_order, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.QuizCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory finds a category by id or name, case-insensitively.
func (r *CatalogRepository) GetCategory(ctx context.Context, categoryKey string) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, icon, quiz_count
		 FROM categories
		 WHERE lower(id) = lower($1) OR lower(name) = lower($1)
		 ORDER BY sort_order
		 LIMIT 1`, categoryKey,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.QuizCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", categoryKey, catalog.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

// GetQuizzesByCategory lists quiz summaries of a category. Unknown
// categories yield an empty slice.
func (r *CatalogRepository) GetQuizzesByCategory(ctx context.Context, categoryKey string) ([]model.QuizSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.title, q.description, q.difficulty, q.question_count,
		        q.estimated_time, q.tags, q.created_at, q.completion_rate
		 FROM quizzes q
		 JOIN categories c ON c.id = q.category_id
		 WHERE lower(c.id) = lower($1) OR lower(c.name) = lower($1)
		 ORDER BY q.sort_order, q.id`, categoryKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]model.QuizSummary, 0)
	for rows.Next() {
		var (
			s          model.QuizSummary
			difficulty string
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &difficulty, &s.QuestionCount,
			&s.EstimatedTime, &s.Tags, &s.CreatedAt, &s.CompletionRate); err != nil {
			return nil, err
		}
		if s.Difficulty, err = model.ParseDifficulty(difficulty); err != nil {
			return nil, fmt.Errorf("quiz %s: %w", s.ID, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetQuizByID loads a full quiz with its questions. Quizzes that are only
// listed and have no questions are reported as not found.
func (r *CatalogRepository) GetQuizByID(ctx context.Context, quizID string) (*model.Quiz, error) {
	var (
		q          model.Quiz
		difficulty string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT q.id, q.title, q.description, c.name, q.difficulty,
		        q.estimated_time, q.tags, q.created_at
		 FROM quizzes q
		 JOIN categories c ON c.id = q.category_id
		 WHERE q.id = $1`, quizID,
	).Scan(&q.ID, &q.Title, &q.Description, &q.Category, &difficulty,
		&q.EstimatedTime, &q.Tags, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quiz %q: %w", quizID, catalog.ErrNotFound)
		}
		return nil, err
	}
	if q.Difficulty, err = model.ParseDifficulty(difficulty); err != nil {
		return nil, fmt.Errorf("quiz %s: %w", quizID, err)
	}

	q.Questions, err = r.listQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(q.Questions) == 0 {
		return nil, fmt.Errorf("quiz %q has no questions: %w", quizID, catalog.ErrNotFound)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *CatalogRepository) listQuestions(ctx context.Context, quizID string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, prompt, options, correct_option_index, explanation, difficulty, points
		 FROM questions WHERE quiz_id = $1
		 ORDER BY position`, quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var (
			q          model.Question
			difficulty string
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Options, &q.CorrectOptionIndex,
			&q.Explanation, &difficulty, &q.Points); err != nil {
			return nil, err
		}
		if q.Difficulty, err = model.ParseDifficulty(difficulty); err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ReplaceCatalog upserts every category, listing and quiz of doc in one
// transaction. Questions of each full quiz are replaced wholesale.
func (r *CatalogRepository) ReplaceCatalog(ctx context.Context, doc *catalog.Document) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, c := range doc.Categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO categories (id, name, description, icon, quiz_count, sort_order)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE
			 SET name = EXCLUDED.name, description = EXCLUDED.description, icon = EXCLUDED.icon,
			     quiz_count = EXCLUDED.quiz_count, sort_order = EXCLUDED.sort_order`,
			c.ID, c.Name, c.Description, c.Icon, c.QuizCount, i,
		); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.ID, err)
		}
	}

	categoryOf := make(map[string]string)
	for categoryID, list := range doc.Listings {
		for i, s := range list {
			categoryOf[s.ID] = categoryID
			if err := upsertQuizRow(ctx, tx, categoryID, i, s); err != nil {
				return err
			}
		}
	}

	for _, q := range doc.Quizzes {
		categoryID, ok := categoryOf[q.ID]
		if !ok {
			categoryID = resolveCategoryID(doc.Categories, q.Category)
		}
		if categoryID == "" {
			return fmt.Errorf("quiz %s: unknown category %q", q.ID, q.Category)
		}
		if !ok {
			summary := model.QuizSummary{
				ID: q.ID, Title: q.Title, Description: q.Description, Difficulty: q.Difficulty,
				QuestionCount: len(q.Questions), EstimatedTime: q.EstimatedTime, Tags: q.Tags, CreatedAt: q.CreatedAt,
			}
			if err := upsertQuizRow(ctx, tx, categoryID, len(doc.Listings[categoryID]), summary); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, q.ID); err != nil {
			return fmt.Errorf("clear questions of %s: %w", q.ID, err)
		}
		questions := q.Questions
		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"questions"},
			[]string{"quiz_id", "id", "position", "prompt", "options", "correct_option_index", "explanation", "difficulty", "points"},
			pgx.CopyFromSlice(len(questions), func(i int) ([]interface{}, error) {
				qq := questions[i]
				return []interface{}{q.ID, qq.ID, i, qq.Prompt, qq.Options, qq.CorrectOptionIndex, qq.Explanation, string(qq.Difficulty), qq.Points}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy questions of %s: %w", q.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func upsertQuizRow(ctx context.Context, tx pgx.Tx, categoryID string, order int, s model.QuizSummary) error {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO quizzes (id, category_id, title, description, difficulty, question_count,
		                      estimated_time, tags, created_at, completion_rate, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE
		 SET category_id = EXCLUDED.category_id, title = EXCLUDED.title, description = EXCLUDED.description,
		     difficulty = EXCLUDED.difficulty, question_count = EXCLUDED.question_count,
		     estimated_time = EXCLUDED.estimated_time, tags = EXCLUDED.tags, created_at = EXCLUDED.created_at,
		     completion_rate = EXCLUDED.completion_rate, sort_order = EXCLUDED.sort_order`,
		s.ID, categoryID, s.Title, s.Description, string(s.Difficulty), s.QuestionCount,
		s.EstimatedTime, tags, createdAt, s.CompletionRate, order,
	)
	if err != nil {
		return fmt.Errorf("upsert quiz %s: %w", s.ID, err)
	}
	return nil
}

func resolveCategoryID(categories []model.Category, key string) string {
	for _, c := range categories {
		if strings.EqualFold(c.ID, key) || strings.EqualFold(c.Name, key) {
			return c.ID
		}
	}
	return ""
}
