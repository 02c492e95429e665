package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/quizmaster/quizmaster-backend/internal/config"
	"github.com/quizmaster/quizmaster-backend/internal/event"
	"github.com/quizmaster/quizmaster-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWriter persists result records.
type ResultWriter interface {
	BulkInsert(ctx context.Context, batch []*model.ResultRecord) error
	Insert(ctx context.Context, rec *model.ResultRecord) error
}

// ResultWorker drains persist_results_queue into PostgreSQL in batches and
// announces each persisted result.
type ResultWorker struct {
	results ResultWriter
	rdb     *redis.Client
	events  event.Publisher
	log     zerolog.Logger
	requeue func(ctx context.Context, raw []byte)
	done    chan struct{}
}

// NewResultWorker creates a ResultWorker. events may be nil.
func NewResultWorker(results ResultWriter, rdb *redis.Client, events event.Publisher, log zerolog.Logger) *ResultWorker {
	if events == nil {
		events = event.Nop{}
	}
	w := &ResultWorker{
		results: results,
		rdb:     rdb,
		events:  events,
		log:     log.With().Str("component", "result_worker").Logger(),
		done:    make(chan struct{}),
	}
	w.requeue = func(ctx context.Context, raw []byte) {
		if err := w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
			w.log.Error().Err(err).Msg("Requeue failed, result dropped")
		}
	}
	return w
}

// Done is closed once Start has returned and the last batch is flushed.
func (w *ResultWorker) Done() <-chan struct{} {
	return w.done
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ResultWorker) Start(ctx context.Context) {
	defer close(w.done)
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*model.ResultRecord, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			rec, ok := w.decode([]byte(item[1]))
			if ok {
				batch = append(batch, rec)
			}
		}
	}
}

func (w *ResultWorker) decode(raw []byte) (*model.ResultRecord, bool) {
	var rec model.ResultRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload")
		return nil, false
	}
	return &rec, true
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*model.ResultRecord) {
	if len(batch) == 0 {
		return
	}

	err := w.results.BulkInsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Results persisted")
		w.announce(ctx, batch)
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("bulk result insert failed, using fallback")

	persisted := make([]*model.ResultRecord, 0, len(batch))
	for _, rec := range batch {
		if err := w.results.Insert(ctx, rec); err != nil {
			w.log.Error().Err(err).Str("session_id", rec.SessionID.String()).Msg("Insert failed, requeueing")
			raw, _ := json.Marshal(rec)
			w.requeue(ctx, raw)
			continue
		}
		persisted = append(persisted, rec)
	}
	w.announce(ctx, persisted)
}

func (w *ResultWorker) announce(ctx context.Context, batch []*model.ResultRecord) {
	for _, rec := range batch {
		if err := w.events.Publish(ctx, event.TypeQuizCompleted, rec); err != nil {
			w.log.Warn().Err(err).Str("session_id", rec.SessionID.String()).Msg("Publish failed")
		}
	}
}
