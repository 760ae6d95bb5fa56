package main

import (
	"github.com/huangang/taskflow/backend/internal/config"
	"github.com/huangang/taskflow/backend/internal/handlers"
	"github.com/huangang/taskflow/backend/internal/metrics"
	"github.com/huangang/taskflow/backend/internal/middleware"
	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/internal/services"
	"github.com/huangang/taskflow/backend/internal/utils"
	"github.com/huangang/taskflow/backend/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg         *config.Config
	db          *gorm.DB
	hub         *services.LiveHub
	authLimiter *middleware.RateLimiter

	authHandler         *handlers.AuthHandler
	projectHandler      *handlers.ProjectHandler
	taskHandler         *handlers.TaskHandler
	issueHandler        *handlers.IssueHandler
	memberHandler       *handlers.TeamMemberHandler
	notificationHandler *handlers.NotificationHandler
	liveHandler         *handlers.LiveHandler
	healthHandler       *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, live hub.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	svc := newAppServices(cfg, models.GetDB())

	if err := metrics.RegisterLiveClients(svc.hub.ClientCount); err != nil {
		logger.Warn().Err(err).Msg("Failed to register live client gauge")
	}
	if sqlDB, err := svc.db.DB(); err == nil {
		if err := metrics.RegisterDB(sqlDB, cfg.Database.Driver); err != nil {
			logger.Warn().Err(err).Msg("Failed to register database metrics")
		}
	}

	return svc
}

// newAppServices wires services and handlers over an open database.
func newAppServices(cfg *config.Config, db *gorm.DB) *appServices {
	hub := services.NewLiveHub(cfg.Live.Buffer)
	notificationService := services.NewNotificationService(db)
	dispatcher := services.NewDispatcher(notificationService, hub)
	authService := services.NewAuthService(db, &cfg.JWT)

	return &appServices{
		cfg:         cfg,
		db:          db,
		hub:         hub,
		authLimiter: middleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst),

		authHandler:         handlers.NewAuthHandler(authService),
		projectHandler:      handlers.NewProjectHandler(services.NewProjectService(db, dispatcher)),
		taskHandler:         handlers.NewTaskHandler(services.NewTaskService(db, dispatcher)),
		issueHandler:        handlers.NewIssueHandler(services.NewIssueService(db, dispatcher)),
		memberHandler:       handlers.NewTeamMemberHandler(services.NewTeamMemberService(db)),
		notificationHandler: handlers.NewNotificationHandler(notificationService, hub),
		liveHandler:         handlers.NewLiveHandler(hub, authService, cfg.CORS.AllowedOrigins),
		healthHandler:       handlers.NewHealthHandler(db, hub),
	}
}

// shutdown releases background resources once the HTTP server has stopped.
func (s *appServices) shutdown() {
	s.authLimiter.Stop()

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
	logger.Info().Msg("Resources released")
}
