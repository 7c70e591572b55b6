package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/careerlens/careerlens-backend/internal/db"
	"github.com/careerlens/careerlens-backend/internal/handlers"
	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/middleware"
	"github.com/careerlens/careerlens-backend/internal/observability"
	"github.com/careerlens/careerlens-backend/internal/repos"
	"github.com/careerlens/careerlens-backend/internal/server"
	"github.com/careerlens/careerlens-backend/internal/services"
	"github.com/careerlens/careerlens-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "careerlens-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(ctx)
	}()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	modelServiceURL := utils.GetEnv("MODEL_SERVICE_URL", "http://localhost:8000", log)
	trainTimeout := utils.GetEnvAsInt("MODEL_TRAIN_TIMEOUT_SECONDS", 300, log)
	feedbackLimit := utils.GetEnvAsInt("FEEDBACK_LIMIT_PER_WEEK", services.DefaultFeedbackLimit, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	feedbackRepo := repos.NewFeedbackRepo(thePG, log)
	modelMetricsRepo := repos.NewModelMetricsRepo(thePG, log)
	retrainRunRepo := repos.NewRetrainRunRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	modelClient := services.NewHTTPModelClient(log, modelServiceURL, time.Duration(trainTimeout)*time.Second)
	rateLimiter := services.NewRateLimiter(log, feedbackRepo, feedbackLimit, services.DefaultFeedbackWindow)
	feedbackService := services.NewFeedbackService(thePG, log, feedbackRepo, userRepo, rateLimiter)
	analyticsService := services.NewAnalyticsService(thePG, log, userRepo, feedbackRepo)
	userService := services.NewUserService(thePG, log, userRepo, modelClient)
	metricsProjector, err := services.NewMetricsProjector(thePG, log, modelMetricsRepo)
	if err != nil {
		log.Error("Could not init MetricsProjector", "error", err)
		os.Exit(1)
	}
	retrainCoordinator := services.NewRetrainCoordinator(thePG, log, retrainRunRepo, userRepo, feedbackRepo, modelClient, metricsProjector)

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := handlers.NewUserHandler(userService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	adminHandler := handlers.NewAdminHandler(analyticsService, feedbackService, metricsProjector, retrainCoordinator)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:     "careerlens-backend",
		AuthMiddleware:  authMiddleware,
		UserHandler:     userHandler,
		FeedbackHandler: feedbackHandler,
		AdminHandler:    adminHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
