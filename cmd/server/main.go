package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contactsync/internal/interchange/adapter"
	"contactsync/internal/interchange/config"
	"contactsync/internal/interchange/handler"
	"contactsync/internal/interchange/repository"
	"contactsync/internal/interchange/router"
	"contactsync/internal/interchange/service"
	"contactsync/internal/interchange/util"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// 0. Load .env (optional) and config
	if _, err := config.LoadEnvFiles(".env"); err != nil {
		util.GetLogger().Error("Failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		util.GetLogger().Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 1. Init Logger
	util.InitLogger(cfg.LogLevel, cfg.LogFormat)
	logger := util.GetLogger()

	// 2. Init storage
	var (
		contacts repository.ContactRepository
		history  repository.HistoryRepository
		client   *mongo.Client
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		mem := repository.NewMemoryRepository()
		contacts, history = mem, mem
		logger.Warn("Using in-memory storage; data is lost on restart")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		cancel()
		if err != nil {
			logger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		db := client.Database(cfg.DBName)
		contacts = repository.NewMongoRepository(db, cfg.ContactsCollection)
		history = repository.NewMongoHistoryRepository(db, cfg.ImportHistoryCollection)
	}

	// Ensure Indexes
	if err := contacts.EnsureIndexes(context.Background()); err != nil {
		logger.Warn("Failed to ensure indexes", "error", err)
	}
	if err := history.EnsureHistoryIndexes(context.Background()); err != nil {
		logger.Warn("Failed to ensure history indexes", "error", err)
	}

	// 3. Init Layers
	quota := adapter.NewLocalQuotaAdapter(contacts, cfg.MaxContactsPerUser)
	svc, err := service.NewService(contacts, history, quota, service.Options{
		MaxBytes:         cfg.ImportMaxBytes,
		MaxRows:          cfg.ImportMaxRows,
		DefaultBatchSize: cfg.ImportDefaultBatchSize,
		FlushConcurrency: cfg.ImportFlushConcurrency,
	})
	if err != nil {
		logger.Error("Failed to init service", "error", err)
		os.Exit(1)
	}
	h := handler.NewInterchangeHandler(svc, cfg.ImportMaxBytes)

	// 4. Init Echo & Routes
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			)
			return nil
		},
	}))

	router.RegisterRoutes(e, h)

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("shutting down the server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server Shutdown Failed", "error", err)
	}

	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("Failed to disconnect DB", "error", err)
		}
	}

	logger.Info("Server exited properly")
}
