package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/http/controller"
	"notifysync/internal/http/middleware"
	"notifysync/internal/metrics"
)

func NewRouter(cfg *config.Config, handler *controller.Handler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		otelgin.Middleware(cfg.OTELServiceName),
		middleware.RequestID(),
		middleware.ZapLogger(logger),
		middleware.ZapRecovery(logger),
	)

	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	sources := router.Group("/sources/:source")
	{
		sources.GET("/notifications", handler.Notifications)
		sources.POST("/notifications/refresh", handler.Refresh)
		sources.POST("/notifications/mark-all-read", handler.MarkAllRead)
		sources.POST("/notifications/:id/mark-read", handler.MarkRead)
		sources.DELETE("/notifications/:id", handler.Delete)
		sources.PUT("/credential", handler.SetCredential)
		sources.GET("/alerts", handler.Alerts)
	}
	router.GET("/sse/:source", handler.SSE)

	games := router.Group("/gamification")
	{
		games.GET("/profile", handler.Profile)
		games.GET("/achievements", handler.Achievements)
		games.GET("/customization", handler.Customization)
		games.PUT("/customization", handler.UpdateCustomization)
	}

	return router
}
