package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quizmaster/quizmaster-backend/internal/config"
	"github.com/quizmaster/quizmaster-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// ResultQueue pushes completed session results onto the Redis list drained
// by ResultWorker.
type ResultQueue struct {
	rdb *redis.Client
}

// NewResultQueue creates a ResultQueue.
func NewResultQueue(rdb *redis.Client) *ResultQueue {
	return &ResultQueue{rdb: rdb}
}

// Enqueue appends one result record.
func (q *ResultQueue) Enqueue(ctx context.Context, rec *model.ResultRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue result: %w", err)
	}
	return nil
}
