package main

import (
	"github.com/gin-gonic/gin"

	"github.com/abhinawagoo/guestloops-sub000/internal/config"
	"github.com/abhinawagoo/guestloops-sub000/internal/middleware"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(cfg.Server.AllowOrigins))

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
		}

		// Public tenant-facing routes, resolved by slug
		public := api.Group("/public", svc.publicLimiter.Middleware())
		{
			public.GET("/tenants/:slug", svc.tenantHandler.GetBySlug)
			public.POST("/tenants/:slug/feedback", svc.feedbackHandler.Submit)
			public.GET("/tenants/:slug/growth-score", svc.growthScoreHandler.GetPublic)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Tenants
			protected.GET("/tenants", svc.tenantHandler.List)
			protected.GET("/tenants/:id", svc.tenantHandler.GetByID)

			// Feedback & reviews
			protected.GET("/tenants/:id/feedback", svc.feedbackHandler.List)
			protected.GET("/tenants/:id/reviews", svc.reviewHandler.List)
			protected.POST("/tenants/:id/reviews/sync", svc.reviewHandler.Sync)
			protected.POST("/tenants/:id/reviews/:reviewID/reply", svc.reviewHandler.Reply)

			// Growth score
			protected.GET("/tenants/:id/growth-score", svc.growthScoreHandler.Get)
			protected.POST("/tenants/:id/growth-score/compute", svc.growthScoreHandler.Compute)

			// Admin-only tenant lifecycle operations
			admin := protected.Group("", middleware.AdminRequired())
			{
				admin.POST("/tenants", svc.tenantHandler.Create)
				admin.PUT("/tenants/:id/status", svc.tenantHandler.UpdateStatus)
			}
		}
	}
}
