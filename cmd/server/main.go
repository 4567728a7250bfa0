package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codewithmorais/quiz-session-service/internal/achievements"
	"github.com/codewithmorais/quiz-session-service/internal/cache"
	"github.com/codewithmorais/quiz-session-service/internal/config"
	"github.com/codewithmorais/quiz-session-service/internal/grading"
	"github.com/codewithmorais/quiz-session-service/internal/handlers"
	"github.com/codewithmorais/quiz-session-service/internal/hints"
	"github.com/codewithmorais/quiz-session-service/internal/repositories/postgres"
	"github.com/codewithmorais/quiz-session-service/internal/results"
	"github.com/codewithmorais/quiz-session-service/internal/services"
	"github.com/codewithmorais/quiz-session-service/internal/session"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
	"github.com/codewithmorais/quiz-session-service/internal/validator"
	"github.com/codewithmorais/quiz-session-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := postgres.AutoMigrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	cacheService := cache.NewRedisCache(redisClient, logger)

	sink := results.NewPostgresSink(repo, logger)
	dispatcher := results.NewDispatcher(sink, logger)
	defer dispatcher.Close()

	sessionService := services.NewSessionService(services.SessionServiceConfig{
		Repo:       repo,
		Registry:   session.NewRegistry(),
		Grader:     grading.NewEngine(logger),
		Evaluator:  achievements.NewEvaluator(achievements.DefaultCatalog()),
		Validator:  validator.New(),
		Cache:      cacheService,
		Dispatcher: dispatcher,
		Publisher:  publisher,
		HintStore:  hints.NewStore(repo, cacheService, logger),
		Logger:     logger,
	})
	exportService := services.NewExportService(repo, logger)
	serviceManager := services.NewServiceManager(sessionService, exportService)

	handlers.InitAuth(cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting quiz session service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
