package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/config"
	"github.com/quangtus/HeThongChamThi-sub000/internal/delivery/httpd"
	"github.com/quangtus/HeThongChamThi-sub000/internal/repository"
	"github.com/quangtus/HeThongChamThi-sub000/internal/service"
	"github.com/quangtus/HeThongChamThi-sub000/internal/service/integration"
)

type App struct {
	server    *http.Server
	logger    zerolog.Logger
	config    *config.Config
	db        *sql.DB
	publisher integration.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	publisher, err := integration.NewRabbitMQPublisher(cfg.RabbitMQ, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ publisher")
		// Grading works without the broker; downstream just has to poll.
		publisher = nil
	}

	examinerRepo := repository.NewExaminerRepository(db, log)
	blockRepo := repository.NewBlockRepository(db, log)
	assignmentRepo := repository.NewAssignmentRepository(db, log)
	resultRepo := repository.NewResultRepository(db, log)

	tracker := service.NewWorkloadTracker(assignmentRepo, examinerRepo, log)
	schedulerService := service.NewSchedulerService(
		assignmentRepo,
		examinerRepo,
		blockRepo,
		tracker,
		cfg.Grading,
		log,
	)
	resultService := service.NewResultService(resultRepo, assignmentRepo, blockRepo, log)
	consensusService := service.NewConsensusService(resultRepo, blockRepo, cfg.Grading, log)
	gradingService := service.NewGradingService(
		schedulerService,
		resultService,
		consensusService,
		assignmentRepo,
		resultRepo,
		blockRepo,
		publisher,
		cfg.Grading,
		log,
	)

	handler := httpd.NewHandler(
		gradingService,
		schedulerService,
		resultService,
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

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting grading service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down grading service...")

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
