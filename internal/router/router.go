package router

import (
	"net/http"
	"time"

	"github.com/edumark/examly-backend/internal/config"
	"github.com/edumark/examly-backend/internal/handler"
	"github.com/edumark/examly-backend/internal/middleware"
	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/response"
	"github.com/edumark/examly-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	Question      *handler.QuestionHandler
	Exam          *handler.ExamHandler
	StudentPortal *handler.StudentPortalHandler
	Catalog       *handler.CatalogHandler
	Monitor       *handler.MonitorHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
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
	router.GET("/healthz", handlers.System.Health)
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/staff/login", handlers.Auth.StaffLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.Me)
		auth.GET("/staff/me", middleware.RequireStaffJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/exams", handlers.StudentPortal.Lobby)
		studentAPI.GET("/exams/:exam_id", handlers.StudentPortal.GetExamPayload)
		studentAPI.POST("/exams/:exam_id/attempts", handlers.StudentPortal.BeginAttempt)
		studentAPI.GET("/exams/:exam_id/attempts", handlers.StudentPortal.MyAttempts)
		studentAPI.GET("/exams/:exam_id/attempts/current", handlers.StudentPortal.CurrentAttempt)
		studentAPI.GET("/exams/:exam_id/result", handlers.StudentPortal.MyResultForExam)
		studentAPI.GET("/attempts/:attempt_id", handlers.StudentPortal.GetAttempt)
		studentAPI.POST("/attempts/:attempt_id/submit", handlers.StudentPortal.SubmitAnswers)
		studentAPI.POST("/attempts/:attempt_id/abandon", handlers.StudentPortal.AbandonAttempt)
		studentAPI.GET("/results", handlers.StudentPortal.MyResults)
	}

	// ─── 3. WebSocket Group (Staff WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStaffWSAuth(authService))
	{
		ws.GET("/staff/exams/:exam_id/monitor",
			middleware.RequireCapability(model.CapabilityExamsMonitor),
			handlers.Monitor.Monitor,
		)
	}

	// ─── 4. Staff Group (JWT + Capabilities) ───────────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireStaffJWT(authService))
	{
		// Question bank
		staffAPI.GET("/questions",
			middleware.RequireCapability(model.CapabilityQuestionsRead),
			handlers.Question.List,
		)
		staffAPI.POST("/questions",
			middleware.RequireCapability(model.CapabilityQuestionsWrite),
			handlers.Question.Create,
		)
		staffAPI.GET("/questions/:question_id",
			middleware.RequireCapability(model.CapabilityQuestionsRead),
			handlers.Question.Get,
		)
		staffAPI.PUT("/questions/:question_id",
			middleware.RequireCapability(model.CapabilityQuestionsWrite),
			handlers.Question.Update,
		)

		// Exams
		staffAPI.GET("/exams",
			middleware.RequireCapability(model.CapabilityExamsRead),
			handlers.Exam.List,
		)
		staffAPI.POST("/exams",
			middleware.RequireCapability(model.CapabilityExamsWrite),
			handlers.Exam.Create,
		)
		staffAPI.GET("/exams/:exam_id",
			middleware.RequireCapability(model.CapabilityExamsRead),
			handlers.Exam.Get,
		)
		staffAPI.PUT("/exams/:exam_id",
			middleware.RequireCapability(model.CapabilityExamsWrite),
			handlers.Exam.Update,
		)
		staffAPI.DELETE("/exams/:exam_id",
			middleware.RequireCapability(model.CapabilityExamsWrite),
			handlers.Exam.Delete,
		)
		staffAPI.PUT("/exams/:exam_id/questions",
			middleware.RequireCapability(model.CapabilityExamsWrite),
			handlers.Exam.SetQuestions,
		)
		staffAPI.POST("/exams/:exam_id/transition",
			middleware.RequireCapability(model.CapabilityExamsTransition),
			handlers.Exam.Transition,
		)
		staffAPI.GET("/exams/:exam_id/attempts",
			middleware.RequireCapability(model.CapabilityResultsRead),
			handlers.Exam.ListAttempts,
		)

		// Results
		staffAPI.GET("/exams/:exam_id/results",
			middleware.RequireCapability(model.CapabilityResultsRead),
			handlers.Exam.ListResults,
		)
		staffAPI.GET("/exams/:exam_id/results/distribution",
			middleware.RequireCapability(model.CapabilityResultsRead),
			handlers.Exam.Distribution,
		)
		staffAPI.POST("/exams/:exam_id/results",
			middleware.RequireCapability(model.CapabilityResultsGrade),
			handlers.Exam.ManualGrade,
		)

		// Catalog
		staffAPI.GET("/subjects",
			middleware.RequireCapability(model.CapabilityExamsRead),
			handlers.Catalog.ListSubjects,
		)
		staffAPI.POST("/subjects",
			middleware.RequireCapability(model.CapabilityExamsWrite),
			handlers.Catalog.CreateSubject,
		)
		staffAPI.GET("/classes",
			middleware.RequireCapability(model.CapabilityExamsRead),
			handlers.Catalog.ListClasses,
		)
		staffAPI.POST("/classes",
			middleware.RequireCapability(model.CapabilityExamsWrite),
			handlers.Catalog.CreateClass,
		)

		// Operational
		staffAPI.GET("/system/queues",
			middleware.RequireCapability(model.CapabilityExamsMonitor),
			handlers.System.QueueStats,
		)
	}

	return router
}
