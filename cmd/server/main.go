package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lbraga/studytrack/internal/api"
	"github.com/lbraga/studytrack/internal/config"
	"github.com/lbraga/studytrack/internal/db"
	"github.com/lbraga/studytrack/internal/jobs"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/repository/sqlite"
	"github.com/lbraga/studytrack/internal/services"
	"github.com/lbraga/studytrack/internal/suggest"
	"github.com/lbraga/studytrack/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("StudyTrack Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("suggest_base_url=%s", cfg.SuggestBaseURL)
	log.Debug("ingest_worker_count=%d", cfg.IngestWorkerCount)
	log.Debug("ingest_queue_size=%d", cfg.IngestQueueSize)
	log.Debug("leaderboard_limit=%d", cfg.LeaderboardLimit)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	userRepo := sqlite.NewUserRepository(database.DB)
	planRepo := sqlite.NewPlanRepository(database.DB)
	resourceRepo := sqlite.NewResourceRepository(database.DB)
	progressRepo := sqlite.NewProgressRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)
	achievementRepo := sqlite.NewAchievementRepository(database.DB)
	quizRepo := sqlite.NewQuizRepository(database.DB)

	// Services
	userService := services.NewUserService(userRepo)
	achievementService := services.NewAchievementService(achievementRepo, progressRepo, userRepo)
	rankingService := services.NewRankingService(userRepo, cfg.LeaderboardLimit)
	planService := services.NewPlanService(planRepo, resourceRepo, achievementService)
	trackerService := services.NewTrackerService(progressRepo, planRepo, sessionRepo, achievementService)
	sessionService := services.NewSessionService(sessionRepo, planRepo, achievementService)
	quizService := services.NewQuizService(quizRepo, rankingService)
	ingestService := services.NewIngestService(suggest.New(cfg.SuggestBaseURL), planRepo, resourceRepo)

	ingestPool := worker.NewPool(cfg.IngestWorkerCount, cfg.IngestQueueSize)
	jobQueue := jobs.NewWorkerQueue(ingestPool, ingestService)

	srv := &api.Server{
		Users:        userService,
		Plans:        planService,
		Tracker:      trackerService,
		Sessions:     sessionService,
		Quizzes:      quizService,
		Ranking:      rankingService,
		Achievements: achievementService,
		Jobs:         jobQueue,
	}

	ctx, cancel := context.WithCancel(context.Background())
	ingestPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping worker pool")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	ingestPool.Stop()

	log.Info("===========================================")
	log.Info("StudyTrack Server Stopped")
	log.Info("===========================================")
}
