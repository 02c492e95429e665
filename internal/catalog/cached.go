package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quizmaster/quizmaster-backend/internal/config"
	"github.com/quizmaster/quizmaster-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cached is a read-through Redis cache in front of another Provider. Full
// quizzes and the category list are cached as JSON; listings pass through.
// Redis failures degrade to the underlying provider.
type Cached struct {
	next Provider
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCached wraps next with a Redis cache whose entries expire after ttl.
func NewCached(next Provider, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *Cached {
	return &Cached{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "catalog_cache").Logger(),
	}
}

func (c *Cached) GetCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if c.load(ctx, config.CacheKey.CategoriesKey(), &categories) {
		return categories, nil
	}

	categories, err := c.next.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, config.CacheKey.CategoriesKey(), categories)
	return categories, nil
}

func (c *Cached) GetCategory(ctx context.Context, categoryKey string) (*model.Category, error) {
	return c.next.GetCategory(ctx, categoryKey)
}

func (c *Cached) GetQuizzesByCategory(ctx context.Context, categoryKey string) ([]model.QuizSummary, error) {
	return c.next.GetQuizzesByCategory(ctx, categoryKey)
}

func (c *Cached) GetQuizByID(ctx context.Context, quizID string) (*model.Quiz, error) {
	var q model.Quiz
	if c.load(ctx, config.CacheKey.QuizPayloadKey(quizID), &q) {
		return &q, nil
	}

	fresh, err := c.next.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, config.CacheKey.QuizPayloadKey(quizID), fresh)
	return fresh, nil
}

// Invalidate drops the cached copy of a quiz.
func (c *Cached) Invalidate(ctx context.Context, quizID string) error {
	return c.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(quizID), config.CacheKey.CategoriesKey()).Err()
}

// Prewarm loads every listed quiz into Redis before traffic arrives.
func (c *Cached) Prewarm(ctx context.Context) error {
	categories, err := c.next.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	c.store(ctx, config.CacheKey.CategoriesKey(), categories)

	warmed, listed := 0, 0
	for _, cat := range categories {
		summaries, err := c.next.GetQuizzesByCategory(ctx, cat.ID)
		if err != nil {
			c.log.Warn().Err(err).Str("category", cat.ID).Msg("Failed to list quizzes, skipping")
			continue
		}
		for _, s := range summaries {
			listed++
			q, err := c.next.GetQuizByID(ctx, s.ID)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					c.log.Warn().Err(err).Str("quiz_id", s.ID).Msg("Failed to warm quiz, skipping")
				}
				continue
			}
			c.store(ctx, config.CacheKey.QuizPayloadKey(q.ID), q)
			warmed++
		}
	}

	c.log.Info().
		Int("warmed", warmed).
		Int("listed", listed).
		Msg("Catalog prewarm complete")
	return nil
}

func (c *Cached) load(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cache entry")
		return false
	}
	return true
}

func (c *Cached) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
