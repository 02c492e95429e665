package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/config"
	"github.com/quizmaster/quizmaster-backend/internal/database"
	"github.com/quizmaster/quizmaster-backend/internal/event"
	"github.com/quizmaster/quizmaster-backend/internal/handler"
	"github.com/quizmaster/quizmaster-backend/internal/logger"
	"github.com/quizmaster/quizmaster-backend/internal/middleware"
	"github.com/quizmaster/quizmaster-backend/internal/repository"
	"github.com/quizmaster/quizmaster-backend/internal/router"
	"github.com/quizmaster/quizmaster-backend/internal/service"
	"github.com/quizmaster/quizmaster-backend/internal/store"
	"github.com/quizmaster/quizmaster-backend/internal/validator"
	"github.com/quizmaster/quizmaster-backend/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// sweepInterval is how often the in-memory session store drops idle sessions.
const sweepInterval = time.Minute

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("session_store", cfg.SessionStore).
		Str("catalog_source", cfg.CatalogSource).
		Msg("Starting QuizMaster Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// ─── Catalog ───────────────────────────────────────────────────────
	provider := buildCatalog(ctx, cfg, pool, rdb, log)

	// ─── Session Store ─────────────────────────────────────────────────
	var sessionStore store.Store
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		mem := store.NewMemory(cfg.SessionTTL, nil)
		go mem.RunSweeper(workerCtx, sweepInterval)
		sessionStore = mem
	default:
		sessionStore = store.NewRedis(rdb, cfg.SessionTTL)
	}

	// ─── Event Publisher ───────────────────────────────────────────────
	var events event.Publisher = event.Nop{}
	if cfg.AMQPURL != "" {
		pub, err := event.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			log.Warn().Err(err).Msg("AMQP unavailable, completion events disabled")
		} else {
			events = pub
		}
	}
	defer events.Close()

	// ─── Repositories & Services ───────────────────────────────────────
	resultRepo := repository.NewResultRepository(pool)
	resultQueue := worker.NewResultQueue(rdb)

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	catalogService := service.NewCatalogService(provider)
	statsService := service.NewStatsService(provider, resultRepo)
	sessionService := service.NewSessionService(provider, sessionStore, tokenService, resultQueue, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	checks := map[string]handler.HealthCheck{
		"postgres": pool.Ping,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}
	handlers := &router.Handlers{
		Catalog: handler.NewCatalogHandler(catalogService, statsService, log),
		Session: handler.NewSessionHandler(sessionService, log),
		WS:      handler.NewWSHandler(sessionService, cfg.TickInterval, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(checks, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	resultWorker := worker.NewResultWorker(resultRepo, rdb, events, log)
	go resultWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	sessionLimiter := middleware.NewRateLimiter(rdb, "sessions", cfg.SessionRateLimit, time.Minute, log)
	r := router.SetupRouter(tokenService, sessionLimiter, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the result batch to flush.
	workerCancel()
	select {
	case <-resultWorker.Done():
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Result worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// buildCatalog picks the configured catalog source. The Postgres source is
// fronted by the Redis cache and prewarmed before traffic is accepted.
func buildCatalog(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) catalog.Provider {
	if cfg.CatalogSource == config.CatalogSourcePostgres {
		cached := catalog.NewCached(repository.NewCatalogRepository(pool), rdb, cfg.CatalogCacheTTL, log)
		if err := cached.Prewarm(ctx); err != nil {
			log.Warn().Err(err).Msg("Catalog prewarm failed")
		}
		return cached
	}

	var (
		static *catalog.Static
		err    error
	)
	if cfg.CatalogFile != "" {
		static, err = catalog.LoadStaticFile(cfg.CatalogFile)
	} else {
		static, err = catalog.NewStatic()
	}
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.CatalogFile).Msg("Failed to load catalog")
	}
	return static
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
