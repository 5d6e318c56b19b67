package api

import (
	"github.com/gin-gonic/gin"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/api/handlers"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/middleware"
)

// SetupRoutes registers the health, dashboard and admin endpoints.
func SetupRoutes(router *gin.Engine, dashboard *handlers.DashboardHandler, health *handlers.HealthHandler, admin *middleware.AdminMiddleware) {
	router.GET("/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/tickers", dashboard.GetTickers)
		v1.GET("/date-range", dashboard.GetDateRange)
		v1.GET("/dashboard", dashboard.GetDashboard)

		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(admin.RequireAdminAuth())
		{
			adminRoutes.POST("/refresh", dashboard.RefreshSnapshot)
		}
	}
}
