package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/codewithmorais/quiz-session-service/internal/services"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	exportHandler  *ExportHandler
	logger         utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(serviceManager.Session(), logger),
		exportHandler:  NewExportHandler(serviceManager.Export(), logger),
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-session-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.logger))
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.DELETE("/:id", hm.sessionHandler.AbandonSession)
			sessions.GET("/:id/summary", hm.sessionHandler.GetSummary)

			// Answer flow
			sessions.POST("/:id/answers", hm.sessionHandler.SubmitAnswer)
			sessions.GET("/:id/answers/:question_id", hm.sessionHandler.ReviewAnswer)
			sessions.POST("/:id/advance", hm.sessionHandler.AdvanceSession)
			sessions.POST("/:id/reset", hm.sessionHandler.ResetSession)

			// Hints
			sessions.POST("/:id/hints", hm.sessionHandler.PurchaseHint)
		}

		exports := v1.Group("/exports")
		{
			exports.GET("/results", hm.exportHandler.ExportResults)
		}
	}
}
