package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/careerlens/careerlens-backend/internal/handlers"
	"github.com/careerlens/careerlens-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName     string
	AuthMiddleware  *middleware.AuthMiddleware
	UserHandler     *handlers.UserHandler
	FeedbackHandler *handlers.FeedbackHandler
	AdminHandler    *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	auth := router.Group("/auth")
	auth.Use(cfg.AuthMiddleware.RequireAuth())
	auth.GET("/me", cfg.UserHandler.GetMe)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	api.POST("/user/preprocess", cfg.UserHandler.Preprocess)
	api.POST("/user/feedback", cfg.FeedbackHandler.Submit)

	admin := api.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	admin.GET("/analytics", cfg.AdminHandler.GetAnalytics)
	admin.GET("/metrics", cfg.AdminHandler.GetMetrics)
	admin.GET("/feedback", cfg.AdminHandler.ListFeedback)
	admin.POST("/retrain", cfg.AdminHandler.Retrain)
	admin.GET("/retrain/status", cfg.AdminHandler.RetrainStatus)

	return router
}
