package main

import (
	"github.com/abhinawagoo/guestloops-sub000/internal/config"
	"github.com/abhinawagoo/guestloops-sub000/internal/handlers"
	"github.com/abhinawagoo/guestloops-sub000/internal/middleware"
	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/internal/services"
	"github.com/abhinawagoo/guestloops-sub000/internal/utils"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	taskQueue     services.TaskQueue
	worker        *services.Worker
	retrySweeper  *services.RetrySweeper
	publicLimiter *middleware.RateLimiter

	authHandler        *handlers.AuthHandler
	tenantHandler      *handlers.TenantHandler
	feedbackHandler    *handlers.FeedbackHandler
	reviewHandler      *handlers.ReviewHandler
	growthScoreHandler *handlers.GrowthScoreHandler
	healthHandler      *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, cache,
// services, task queue, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Demo mode runs on a throwaway in-memory database
	if cfg.Database.Demo {
		cfg.Database.Driver = "sqlite"
		cfg.Database.DSN = "file::memory:?cache=shared"
		logger.Warnf("Demo mode enabled, data will not persist")
	}

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	db := models.GetDB()

	// Tenant resolution: shared TTL cache in front of the store
	tenantCache := services.NewTenantCache(services.DefaultTenantCacheTTL, services.DefaultTenantCacheCapacity)
	tenantService := services.NewTenantService(db, tenantCache)

	if cfg.Database.Demo {
		seedDemoTenant(tenantService)
	}

	// Task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.NewTaskQueue(cfg)

	analyzerService := services.NewAnalyzerService(&cfg.Analyzer)
	feedbackService := services.NewFeedbackService(db, taskQueue)
	reviewService := services.NewReviewService(db, taskQueue)
	analysisService := services.NewAnalysisService(db, analyzerService, feedbackService, reviewService)
	growthScoreService := services.NewGrowthScoreService(db, tenantService, analyzerService, feedbackService, reviewService)

	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(analysisService.ProcessTask)
	}

	// Async worker when Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(analysisService.ProcessTask)
			if err := worker.Start(); err != nil {
				logger.Fatalf("Failed to start analysis worker: %v", err)
			}
		}
	}

	// Periodic re-enqueue of pending/failed analyses
	retrySweeper := services.NewRetrySweeper(db, taskQueue)
	retrySweeper.Start()

	// Throttles the unauthenticated tenant-facing routes
	publicLimiter := middleware.NewRateLimiter(10, 20)

	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warnf("Failed to create admin user: %v", err)
	}

	return &appServices{
		taskQueue:          taskQueue,
		worker:             worker,
		retrySweeper:       retrySweeper,
		publicLimiter:      publicLimiter,
		authHandler:        authHandler,
		tenantHandler:      handlers.NewTenantHandler(tenantService),
		feedbackHandler:    handlers.NewFeedbackHandler(tenantService, feedbackService),
		reviewHandler:      handlers.NewReviewHandler(tenantService, reviewService),
		growthScoreHandler: handlers.NewGrowthScoreHandler(tenantService, growthScoreService),
		healthHandler:      handlers.NewHealthHandler(db, taskQueue),
	}
}

// seedDemoTenant registers a tenant in the in-process fallback store so the
// public endpoints work out of the box.
func seedDemoTenant(tenantService *services.TenantService) {
	tenant, err := tenantService.Create("Demo Hotel", "demo-hotel")
	if err != nil {
		logger.Warnf("Failed to seed demo tenant: %v", err)
		return
	}
	tenantService.SeedFallback(tenant)
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	s.publicLimiter.Stop()
	s.retrySweeper.Stop()
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Infof("All background services stopped")
}
