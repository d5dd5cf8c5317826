package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"compliflow/internal/common/cache"
	"compliflow/internal/common/db"
	"compliflow/internal/common/http/middleware"
	"compliflow/internal/common/mq"
	"compliflow/internal/common/storage"
	"compliflow/internal/compliance/controller"
	"compliflow/internal/compliance/repository"
	"compliflow/internal/compliance/service"
	"compliflow/pkg/utils/logger"
)

func main() {
	configPath := flag.String("config", "configs/compliance_service.yaml", "path to config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.Error(context.Background(), "service exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *Config) error {
	ctx := context.Background()

	var c cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCacheWithConfig(&cfg.Redis.Config)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		c = redisCache
	}

	var repo repository.SubmissionRepository
	switch cfg.Store.Driver {
	case "mysql":
		database, err := db.NewMySQLWithConfig(&cfg.Store.MySQL)
		if err != nil {
			return fmt.Errorf("failed to connect to mysql: %w", err)
		}
		defer database.Close()
		repo, err = repository.NewMySQLRepository(database, c)
		if err != nil {
			return err
		}
	default:
		repo = repository.NewMemoryRepository()
	}

	var objStorage storage.ObjectStorage
	if cfg.MinIO.Enabled {
		s, err := storage.NewMinIOStorage(ctx, cfg.MinIO.Config)
		if err != nil {
			return fmt.Errorf("failed to connect to minio: %w", err)
		}
		objStorage = s
	}

	var publisher *service.EventPublisher
	if cfg.Kafka.Enabled {
		queue, err := mq.NewKafkaQueue(cfg.Kafka.Config)
		if err != nil {
			return fmt.Errorf("failed to create kafka queue: %w", err)
		}
		defer queue.Close()
		publisher = service.NewEventPublisher(queue, cfg.Kafka.Topic)
	}

	if cfg.Sample.Count > 0 {
		gen := service.NewSampleDataGenerator(cfg.Sample.Seed, time.Now())
		if err := gen.Seed(ctx, repo, cfg.Sample.Count); err != nil {
			return fmt.Errorf("failed to seed sample data: %w", err)
		}
		logger.Info(ctx, "seeded sample submissions", zap.Int("count", cfg.Sample.Count))
	}

	intake, err := service.NewIntakeService(service.IntakeServiceConfig{
		Repo:      repo,
		Storage:   objStorage,
		Cache:     c,
		Publisher: publisher,
	})
	if err != nil {
		return err
	}
	queue, err := service.NewQueueService(service.QueueServiceConfig{
		Repo:      repo,
		Cache:     c,
		Publisher: publisher,
	})
	if err != nil {
		return err
	}
	metrics, err := service.NewMetricsService(service.MetricsServiceConfig{
		Repo:  repo,
		Cache: c,
	})
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Trace(), middleware.RequestLogger())

	router.GET("/health", func(gc *gin.Context) {
		gc.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Auth.JWTSecret))
	controller.NewIntakeController(intake).RegisterRoutes(api)
	controller.NewQueueController(queue).RegisterRoutes(api)
	controller.NewMetricsController(metrics).RegisterRoutes(api)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "compliance service listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info(ctx, "shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
