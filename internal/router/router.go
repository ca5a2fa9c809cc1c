package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examspark/examspark-backend/internal/config"
	"github.com/examspark/examspark-backend/internal/handler"
	"github.com/examspark/examspark-backend/internal/middleware"
	"github.com/examspark/examspark-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam    *handler.ExamHandler
	Attempt *handler.AttemptHandler
	Media   *handler.MediaHandler
	Monitor *handler.MonitorHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the hot endpoints (30 requests per minute per IP).
	gradeLimiter := middleware.NewRateLimiter(30, time.Minute)
	uploadLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Public Group (exam catalogue, summaries only) ──────────────
	public := router.Group("/api/v1")
	{
		public.GET("/exams", handlers.Exam.ListExams)
	}

	// ─── 2. Student Group (any authenticated user) ─────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireUser(cfg.JWTSecret))
	{
		api.GET("/exams/:id/payload", handlers.Exam.GetExamPayload)
		api.POST("/exams/:id/grade", gradeLimiter.Middleware(), handlers.Attempt.GradeExam)
	}

	// ─── 3. WebSocket Group (query token auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWS(cfg.JWTSecret))
	{
		ws.GET("/exams/:exam_id/attempt", handlers.WS.ExamAttemptStream)
	}

	// ─── 4. Author Group ───────────────────────────────────────────────
	authorAPI := router.Group("/api/v1")
	authorAPI.Use(middleware.RequireAuthor(cfg.JWTSecret))
	{
		authorAPI.GET("/exams/:id", handlers.Exam.GetExam)
		authorAPI.POST("/exams", handlers.Exam.CreateExam)
		authorAPI.PUT("/exams/:id", handlers.Exam.UpdateExam)
		authorAPI.DELETE("/exams/:id", handlers.Exam.DeleteExam)
		authorAPI.GET("/exams/:id/attempts", handlers.Attempt.ListAttempts)
		authorAPI.GET("/exams/:id/monitor", handlers.Monitor.MonitorExamSSE)
		authorAPI.POST("/media/upload", uploadLimiter.Middleware(), handlers.Media.UploadMedia)
	}

	return router
}
