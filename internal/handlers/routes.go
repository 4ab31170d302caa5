package handlers

import (
	"net/http"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/feriahub/marketplace-backend/internal/middleware"
	"github.com/feriahub/marketplace-backend/internal/services/application"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func SetupRoutes(router *gin.Engine, svc *application.Service, identity domain.IdentityStore) {
	logrus.Info("Setting up routes...")

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Server is running!",
			"status":  "ok",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "marketplace-backend",
		})
	})

	applicationHandler := NewApplicationHandler(svc)
	adminHandler := NewAdminHandler(svc)
	principalHandler := NewPrincipalHandler(identity, svc)

	// Public Routes
	public := router.Group("/api/v1")
	{
		public.POST("/principals/register", principalHandler.Register)
	}

	// Protected Routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(svc))
	{
		protected.GET("/principals/me", principalHandler.Me)

		applications := protected.Group("/applications")
		{
			applications.POST("", applicationHandler.Submit)
			applications.GET("/:id", applicationHandler.Get)
			applications.POST("/:id/documents", applicationHandler.AttachDocument)
		}

		admin := protected.Group("/admin/applications")
		admin.Use(middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("", adminHandler.List)
			admin.POST("/:id/approve", adminHandler.Approve)
			admin.POST("/:id/reject", adminHandler.Reject)
			admin.POST("/:id/retry-promotion", adminHandler.RetryPromotion)
		}
	}
}
