package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estimate-service/config"
	"estimate-service/internal/api"
	"estimate-service/internal/broker"
	"estimate-service/internal/mailer"
	"estimate-service/internal/objectstore"
	"estimate-service/internal/redisclient"
	"estimate-service/internal/service"
	"estimate-service/internal/store"
	"estimate-service/internal/util"
	"estimate-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, "estimate-service"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting estimate service",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port))

	tp, err := util.InitTracer("estimate-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	ctx := context.Background()

	var repo store.Repository
	storageMode := "postgres"
	db, err := store.NewStore(cfg.Database.URL)
	switch {
	case errors.Is(err, store.ErrUnconfigured):
		logger.Warn("DATABASE_URL is not set, using the in-memory store; data is lost on restart")
		repo = store.NewMemory()
		storageMode = "memory"
	case err != nil:
		logger.Fatal("Failed to connect to database", zap.Error(err))
	default:
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		repo = db
		logger.Info("Database connected")
	}
	defer repo.Close()

	// Optional collaborators stay nil interfaces when unconfigured.
	var locker service.KeyLocker
	var cache service.CatalogCache
	if cfg.Redis.Addr != "" {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		locker, cache = redisClient, redisClient
		logger.Info("Redis connected")
	} else {
		logger.Info("REDIS_ADDR is not set, using in-process locks without a catalog cache")
	}

	var uploader service.Uploader
	if cfg.Storage.Bucket != "" {
		gcs, err := objectstore.NewGCS(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsFile, cfg.Storage.PublicBaseURL)
		if err != nil {
			logger.Fatal("Failed to create object storage client", zap.Error(err))
		}
		defer gcs.Close()
		uploader = gcs
		logger.Info("Object storage configured", zap.String("bucket", cfg.Storage.Bucket))
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var events service.EventPublisher
	var notifier service.Notifier
	var notificationWorker *worker.NotificationWorker
	logMailer := mailer.NewLogMailer(logger)

	if len(cfg.Kafka.Brokers) > 0 {
		eventProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer eventProducer.Close()
		events = broker.NewEventPublisher(eventProducer)

		notificationProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotifications)
		defer notificationProducer.Close()
		notifier = broker.NewEventPublisher(notificationProducer)

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotifications, cfg.Kafka.ConsumerGroup)
		notificationWorker = worker.NewNotificationWorker(consumer, logMailer)
		go func() {
			if err := notificationWorker.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Notification worker error", zap.Error(err))
			}
		}()
		logger.Info("Kafka configured", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		notificationWorker = worker.NewNotificationWorker(nil, logMailer)
		notifier = notificationWorker
		logger.Info("KAFKA_BROKERS is not set, sending notifications inline")
	}

	versionService := service.NewVersionService(repo, events)
	handler := api.NewHandler(api.Services{
		Estimates:   service.NewEstimateService(repo, events, notifier, cfg.Business.AdminEmail),
		Pricing:     service.NewPricingService(repo, locker, events, cache),
		Catalog:     service.NewCatalogService(repo, cache, cfg.Business.CatalogCacheTTL),
		Quotes:      service.NewQuoteService(repo),
		Versions:    versionService,
		Contracts:   service.NewContractService(repo, versionService, uploader, events, notifier),
		Store:       repo,
		StorageMode: storageMode,
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	_ = notificationWorker.Stop()

	logger.Info("Server exited")
}
