package main

import (
	"context"
	"flag"
	"time"

	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/config"
	"github.com/quizmaster/quizmaster-backend/internal/database"
	"github.com/quizmaster/quizmaster-backend/internal/logger"
	"github.com/quizmaster/quizmaster-backend/internal/repository"
)

func main() {
	var file string
	var skipCache bool
	flag.StringVar(&file, "file", "", "Catalog YAML file (defaults to the bundled catalog)")
	flag.BoolVar(&skipCache, "skip-cache", false, "Do not invalidate cached quiz payloads in Redis")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var (
		static *catalog.Static
		err    error
	)
	if file != "" {
		static, err = catalog.LoadStaticFile(file)
	} else {
		static, err = catalog.NewStatic()
	}
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to load catalog")
	}
	doc := static.Document()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	repo := repository.NewCatalogRepository(pool)
	if err := repo.ReplaceCatalog(ctx, doc); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed catalog")
	}
	log.Info().
		Int("categories", len(doc.Categories)).
		Int("quizzes", len(doc.Quizzes)).
		Msg("Catalog seeded")

	if skipCache {
		return
	}

	// Running servers would keep serving the old payloads until the TTL ran out.
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, cached payloads left to expire")
		return
	}
	defer rdb.Close()

	cached := catalog.NewCached(repo, rdb, cfg.CatalogCacheTTL, log)
	for _, q := range doc.Quizzes {
		if err := cached.Invalidate(ctx, q.ID); err != nil {
			log.Warn().Err(err).Str("quiz_id", q.ID).Msg("Failed to invalidate cached quiz")
		}
	}
	if err := cached.Prewarm(ctx); err != nil {
		log.Warn().Err(err).Msg("Catalog prewarm failed")
	}
}
