package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edumark/examly-backend/internal/config"
	"github.com/edumark/examly-backend/internal/database"
	"github.com/edumark/examly-backend/internal/handler"
	"github.com/edumark/examly-backend/internal/logger"
	"github.com/edumark/examly-backend/internal/repository"
	"github.com/edumark/examly-backend/internal/router"
	"github.com/edumark/examly-backend/internal/service"
	"github.com/edumark/examly-backend/internal/validator"
	"github.com/edumark/examly-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Examly Backend")

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

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	examCache := service.NewRedisExamCache(rdb, log)
	sessions := service.NewRedisSessionRegistry(rdb)
	authService := service.NewAuthService(studentRepo, staffRepo, sessions, cfg, log)
	questionService := service.NewQuestionService(questionRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, examCache, log)
	resultService := service.NewResultService(resultRepo, examRepo, log)
	lifecycleService := service.NewLifecycleService(examRepo, examService, examCache, log)
	attemptService := service.NewAttemptService(examRepo, attemptRepo, questionRepo, examCache, examCache, resultService, examCache, log)
	catalogService := service.NewCatalogService(catalogRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Question:      handler.NewQuestionHandler(questionService),
		Exam:          handler.NewExamHandler(examService, lifecycleService, attemptService, resultService),
		StudentPortal: handler.NewStudentPortalHandler(examService, attemptService, resultService),
		Catalog:       handler.NewCatalogHandler(catalogService),
		Monitor:       handler.NewMonitorHandler(rdb, examService, log, cfg.AllowedOrigins),
		System:        handler.NewSystemHandler(pool, rdb),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	resultWorker := worker.NewResultWorker(attemptRepo, resultRepo, rdb, log)
	go resultWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load every live exam into Redis BEFORE accepting traffic so a
	// restart never leaves grading cold under a thundering herd.
	examService.PrewarmAllCaches(ctx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
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

	// 2. Stop background workers and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
