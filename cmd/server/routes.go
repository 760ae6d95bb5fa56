package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/taskflow/backend/internal/handlers"
	"github.com/huangang/taskflow/backend/internal/middleware"
	"github.com/huangang/taskflow/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.CORS.AllowedOrigins))

	api := r.Group("/api")
	{
		api.GET("/health", svc.healthHandler.CheckHealth)
		api.GET("/metrics", handlers.Metrics())

		// Auth routes (public, rate limited per IP)
		auth := api.Group("/auth", svc.authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Live notifications accept the token as a query parameter
		live := api.Group("", middleware.StreamAuthRequired())
		{
			live.GET("/events/notifications", svc.liveHandler.StreamNotifications)
			live.GET("/ws/notifications", svc.liveHandler.ServeWebSocket)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.Me)

			// Projects
			protected.GET("/projects", svc.projectHandler.List)
			protected.POST("/projects", svc.projectHandler.Create)
			protected.GET("/projects/:id", svc.projectHandler.GetByID)
			protected.PATCH("/projects/:id", svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)

			// Tasks
			protected.GET("/tasks", svc.taskHandler.List)
			protected.GET("/tasks/:id", svc.taskHandler.GetByID)
			protected.PATCH("/tasks/:id", svc.taskHandler.Update)

			// Issues
			protected.GET("/issues", svc.issueHandler.List)
			protected.POST("/issues", svc.issueHandler.Create)
			protected.GET("/issues/:id", svc.issueHandler.GetByID)
			protected.PATCH("/issues/:id/resolve", svc.issueHandler.Resolve)
			protected.DELETE("/issues/:id", svc.issueHandler.Delete)

			// Team members
			protected.GET("/team-members", svc.memberHandler.List)
			protected.POST("/team-members", svc.memberHandler.Create)
			protected.GET("/team-members/:id", svc.memberHandler.GetByID)
			protected.PATCH("/team-members/:id/status", svc.memberHandler.UpdateStatus)
			protected.DELETE("/team-members/:id", svc.memberHandler.Delete)

			// Notifications
			protected.GET("/notifications", svc.notificationHandler.List)
			protected.GET("/notifications/unread-count", svc.notificationHandler.UnreadCount)
			protected.POST("/notifications", svc.notificationHandler.Create)
			protected.PATCH("/notifications/read-all", svc.notificationHandler.MarkAllAsRead)
			protected.PATCH("/notifications/:id/read", svc.notificationHandler.MarkAsRead)
			protected.DELETE("/notifications/:id", svc.notificationHandler.Delete)

			// Manager/admin only
			elevated := protected.Group("", middleware.ElevatedRequired())
			{
				elevated.POST("/tasks", svc.taskHandler.Create)
				elevated.DELETE("/tasks/:id", svc.taskHandler.Delete)
			}
		}
	}
}
