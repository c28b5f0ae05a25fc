package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-runner/brackets"
	"github.com/Dosada05/tournament-runner/config"
	"github.com/Dosada05/tournament-runner/db"
	"github.com/Dosada05/tournament-runner/handlers"
	"github.com/Dosada05/tournament-runner/repositories"
	api "github.com/Dosada05/tournament-runner/routes"
	"github.com/Dosada05/tournament-runner/services"
	"github.com/Dosada05/tournament-runner/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

// run wires the application and serves until a shutdown signal. Every
// resource it opens is released before it returns.
func run(logger *slog.Logger) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Хранилище турниров: PostgreSQL, если задан DATABASE_URL, иначе файлы в DATA_DIR
	var stateRepo repositories.StateRepository
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer closeDB(logger, dbConn)
		logger.Info("database connection established")

		if err := db.Migrate(ctx, dbConn); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		stateRepo = repositories.NewPostgresStateRepository(dbConn)
	} else {
		stateRepo, err = repositories.NewFileStateRepository(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open data directory %q: %w", cfg.DataDir, err)
		}
		logger.Info("using file storage", slog.String("dir", cfg.DataDir))
	}

	participantRepo := repositories.NewFileRosterRepository(cfg.ParticipantsFile)
	requirementRepo := repositories.NewFileRosterRepository(cfg.RequirementsFile)

	// Архив отчетов в Cloudflare R2 (необязательно)
	var archiver storage.ReportArchiver
	if !cfg.R2.IsZero() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, cfg.R2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		archiver = uploader
		logger.Info("Cloudflare R2 report archive enabled", slog.String("bucket", cfg.R2.BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация сервисов
	authService := services.NewAuthService(cfg.OrganizerPasswordHash, cfg.JWTSecretKey)
	rosterService := services.NewRosterService(participantRepo, requirementRepo)
	reportService := services.NewReportService(stateRepo)
	engine := services.NewRoundEngine(services.RoundEngineDeps{
		Repo:     stateRepo,
		Archiver: archiver,
		Notifier: wsHub,
		Logger:   logger,
	})

	if _, err := engine.Resume(ctx); err != nil {
		logger.Warn("starting without an in-progress tournament", slog.Any("error", err))
	}
	if roster, err := rosterService.LoadAll(ctx); err != nil {
		logger.Warn("failed to load roster", slog.Any("error", err))
	} else {
		logger.Info("roster loaded",
			slog.Int("participants", len(roster.Participants)),
			slog.Int("requirements", len(roster.Requirements)))
	}
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	tournamentHandler := handlers.NewTournamentHandler(engine)
	reportHandler := handlers.NewReportHandler(reportService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.CORSAllowedOrigins,
		authService,
		authHandler,
		rosterHandler,
		tournamentHandler,
		reportHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}

func closeDB(logger *slog.Logger, dbConn *sql.DB) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
	} else {
		logger.Info("database connection closed")
	}
}
