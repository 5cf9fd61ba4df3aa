package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/config"
	"github.com/coursedeck/submission-service/internal/delivery/httpd"
	"github.com/coursedeck/submission-service/internal/repository"
	"github.com/coursedeck/submission-service/internal/service"
	"github.com/coursedeck/submission-service/internal/service/integration"
	"github.com/coursedeck/submission-service/internal/storage"
)

type App struct {
	server    *http.Server
	logger    zerolog.Logger
	config    *config.Config
	db        *sql.DB
	publisher integration.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	artifacts, err := newStorageProvider(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	var publisher integration.EventPublisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = integration.NewRabbitMQPublisher(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.RoutingKey,
			cfg.RabbitMQ.QueueName,
			log,
		)
		if err != nil {
			// The portal works without a broker; events are just not fanned out.
			log.Error().Err(err).Msg("Failed to create RabbitMQ publisher, continuing without events")
			publisher = nil
		}
	}

	courseRepo := repository.NewCourseRepository(db, log)
	groupRepo := repository.NewGroupRepository(db, log)
	submissionRepo := repository.NewSubmissionRepository(db, log)
	packageRepo := repository.NewPackageRepository(db, log)
	adminRepo := repository.NewAdminRepository(db, log)

	clock := service.NewClock()
	gate := service.NewDeadlineGate(clock)

	packageService := service.NewPackageService(packageRepo, artifacts, publisher, cfg.Package.Root, clock, log)
	submissionService := service.NewSubmissionService(groupRepo, courseRepo, submissionRepo, artifacts, gate, clock, publisher, log)
	courseService := service.NewCourseService(courseRepo, groupRepo, artifacts, packageService, log)
	groupService := service.NewGroupService(groupRepo, log)
	adminService := service.NewAdminService(adminRepo, log)

	if err := adminService.EnsureDefault(context.Background(), cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	handler := httpd.NewHandler(
		submissionService,
		courseService,
		packageService,
		groupService,
		adminService,
		cfg.Server.MaxUploadSize,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:    server,
		logger:    log,
		config:    cfg,
		db:        db,
		publisher: publisher,
	}, nil
}

func newStorageProvider(cfg config.StorageConfig, log zerolog.Logger) (storage.Provider, error) {
	switch cfg.Provider {
	case "minio":
		return storage.NewMinIOProvider(cfg.MinIO, log)
	case "local", "":
		return storage.NewLocalProvider(cfg.Root, log)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting submission service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down submission service...")

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return a.server.Shutdown(ctx)
}
