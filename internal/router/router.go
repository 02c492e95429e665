package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizmaster/quizmaster-backend/internal/config"
	"github.com/quizmaster/quizmaster-backend/internal/handler"
	"github.com/quizmaster/quizmaster-backend/internal/middleware"
	"github.com/quizmaster/quizmaster-backend/internal/response"
	"github.com/quizmaster/quizmaster-backend/internal/service"
	"github.com/rs/zerolog"
)

// catalogMaxAge is how long clients may cache catalog reads, in seconds.
const catalogMaxAge = 60

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Catalog *handler.CatalogHandler
	Session *handler.SessionHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokens *service.TokenService,
	sessionLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// ─── 1. Catalog (Public, Cacheable) ────────────────────────────────
	catalogAPI := router.Group("/api/v1")
	catalogAPI.Use(middleware.CacheControl(catalogMaxAge))
	{
		catalogAPI.GET("/categories", handlers.Catalog.ListCategories)
		catalogAPI.GET("/categories/:category", handlers.Catalog.GetCategory)
		catalogAPI.GET("/categories/:category/quizzes", handlers.Catalog.ListCategoryQuizzes)
		catalogAPI.GET("/quizzes/:quiz_id", handlers.Catalog.GetQuiz)
		catalogAPI.GET("/quizzes/:quiz_id/stats", handlers.Catalog.GetQuizStats)
	}

	// ─── 2. Sessions (Token Per Session) ───────────────────────────────
	sessions := router.Group("/api/v1/sessions")
	sessions.Use(middleware.NoStore())
	{
		if sessionLimiter != nil {
			sessions.POST("", sessionLimiter.Middleware(), handlers.Session.CreateSession)
		} else {
			sessions.POST("", handlers.Session.CreateSession)
		}

		owned := sessions.Group("/:session_id")
		owned.Use(middleware.RequireSessionToken(tokens))
		{
			owned.GET("", handlers.Session.GetSession)
			owned.DELETE("", handlers.Session.DiscardSession)
			owned.POST("/select", handlers.Session.SelectOption)
			owned.POST("/submit", handlers.Session.SubmitAnswer)
			owned.POST("/advance", handlers.Session.Advance)
			owned.POST("/previous", handlers.Session.GoToPrevious)
			owned.GET("/result", handlers.Session.GetResult)
		}
	}

	// ─── 3. WebSocket (Token In Query) ─────────────────────────────────
	ws := router.Group("/ws/v1/sessions/:session_id")
	ws.Use(middleware.RequireSessionToken(tokens))
	{
		ws.GET("/stream", handlers.WS.SessionStream)
	}

	return router
}
