package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"jobvacancies/backend/internal/api/handlers"
	apimiddleware "jobvacancies/backend/internal/api/middleware"
	"jobvacancies/backend/internal/config"
	"jobvacancies/backend/internal/services"
	"jobvacancies/backend/internal/storage"
	"jobvacancies/backend/pkg/utils"
)

func main() {
	// Инициализация логгера
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting vacancies backend...")

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Хранилище вакансий: файл должен существовать заранее
	store, err := storage.NewVacancyStore(cfg.VacanciesFile, logger)
	if err != nil {
		logger.Fatal("Failed to open vacancies file",
			zap.String("path", cfg.VacanciesFile),
			zap.Error(err))
	}

	// Redis опционален: лимиты и аудит запросов к HH.ru
	var redisClient *storage.RedisClient
	if cfg.RedisAddress != "" {
		redisClient, err = storage.NewRedisClient(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// Postgres опционален: архив вакансий
	var db *storage.Database
	var archive services.VacancyArchive
	if cfg.DatabaseURL != "" {
		db, err = storage.NewDatabase(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		archive = db
	}

	// Инициализация сервисов
	vacancyService := services.NewVacancyService(store, logger)
	hhService := services.NewHHService(&cfg.HH, redisClient, logger)
	refreshEngine := services.NewRefreshEngine(
		vacancyService, hhService, archive, services.QueryFromConfig(&cfg.HH), logger,
	)

	if cfg.RefreshSchedule != "" {
		if err := refreshEngine.Start(cfg.RefreshSchedule); err != nil {
			logger.Fatal("Failed to schedule refresh", zap.Error(err))
		}
	}

	// Инициализация хендлеров
	vacancyHandler := handlers.NewVacancyHandler(vacancyService, logger)
	refreshHandler := handlers.NewRefreshHandler(refreshEngine, logger)

	var auth func(http.Handler) http.Handler
	if cfg.JWTSecret != "" {
		auth = apimiddleware.AuthMiddleware(cfg.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET is empty, write endpoints are not protected")
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(apimiddleware.RequestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(apimiddleware.LoggingMiddleware(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.CORSMiddleware)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(chimiddleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		servicesStatus := make(map[string]string)
		status := "healthy"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if _, err := vacancyService.Count(); err == nil {
			servicesStatus["storage"] = "healthy"
		} else {
			servicesStatus["storage"] = "unhealthy"
			status = "unhealthy"
			logger.Error("Storage health check failed", zap.Error(err))
		}

		if db != nil {
			if dbErr := db.HealthCheck(ctx); dbErr == nil {
				servicesStatus["database"] = "healthy"
			} else {
				servicesStatus["database"] = "unhealthy"
				logger.Error("Database health check failed", zap.Error(dbErr))
			}
		}

		if redisClient != nil {
			if redisErr := redisClient.HealthCheck(ctx); redisErr == nil {
				servicesStatus["redis"] = "healthy"
			} else {
				servicesStatus["redis"] = "unhealthy"
				logger.Error("Redis health check failed", zap.Error(redisErr))
			}
		}

		utils.WriteHealthCheck(w, status, servicesStatus)
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Mount("/vacancies", vacancyHandler.Routes(auth))
		r.Mount("/refresh", refreshHandler.Routes(auth))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "Route not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     zap.NewStdLog(logger),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.String("address", cfg.ServerAddress),
			zap.String("env", cfg.Environment),
			zap.String("vacancies_file", cfg.VacanciesFile))

		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatal("Server failed to start", zap.Error(err))

	case sig := <-shutdown:
		logger.Info("Shutdown signal received",
			zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Fatal("Force shutdown failed", zap.Error(err))
			}
		}

		logger.Info("Stopping refresh scheduler...")
		refreshEngine.Stop()

		logger.Info("Server stopped gracefully")
	}
}
