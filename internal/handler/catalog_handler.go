package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizmaster/quizmaster-backend/internal/response"
	"github.com/quizmaster/quizmaster-backend/internal/service"
	"github.com/rs/zerolog"
)

// CatalogHandler serves categories and quizzes.
type CatalogHandler struct {
	catalogService *service.CatalogService
	statsService   *service.StatsService
	log            zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler. statsService may be nil
// when results are not persisted.
func NewCatalogHandler(catalogService *service.CatalogService, statsService *service.StatsService, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		statsService:   statsService,
		log:            log.With().Str("component", "catalog_handler").Logger(),
	}
}

// ListCategories godoc
// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		failWith(c, h.log, err, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

// GetCategory godoc
// GET /api/v1/categories/:category
// Returns the category, its overview figures and its quizzes.
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	page, err := h.catalogService.GetCategoryPage(c.Request.Context(), c.Param("category"))
	if err != nil {
		failWith(c, h.log, err, response.ErrCategoryNotFound)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// ListCategoryQuizzes godoc
// GET /api/v1/categories/:category/quizzes
// Unknown categories return an empty list.
func (h *CatalogHandler) ListCategoryQuizzes(c *gin.Context) {
	quizzes, err := h.catalogService.ListQuizzes(c.Request.Context(), c.Param("category"))
	if err != nil {
		failWith(c, h.log, err, response.ErrCategoryNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// GetQuiz godoc
// GET /api/v1/quizzes/:quiz_id
// Returns the quiz without correct answers or explanations.
func (h *CatalogHandler) GetQuiz(c *gin.Context) {
	q, err := h.catalogService.GetQuiz(c.Request.Context(), c.Param("quiz_id"))
	if err != nil {
		failWith(c, h.log, err, response.ErrQuizNotFound)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// GetQuizStats godoc
// GET /api/v1/quizzes/:quiz_id/stats
func (h *CatalogHandler) GetQuizStats(c *gin.Context) {
	if h.statsService == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable)
		return
	}
	stats, err := h.statsService.QuizStats(c.Request.Context(), c.Param("quiz_id"))
	if err != nil {
		failWith(c, h.log, err, response.ErrQuizNotFound)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
