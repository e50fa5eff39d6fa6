package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/profactive/backend/internal/notification"
	"github.com/profactive/backend/internal/repositories"
	"github.com/profactive/backend/internal/services"
	"github.com/profactive/backend/libs/auth/middleware"
	"github.com/profactive/backend/libs/config"
	"github.com/profactive/backend/libs/logger"
	"github.com/profactive/backend/libs/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting PROFACTIVE worker")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	workerMetrics := metrics.NewMetrics(registry, "worker")

	// The digest is queued like any other email and delivered by this worker
	notifier := notification.NewQueueNotifier(asynqClient, workerMetrics, logger.Logger)
	maintenance := services.NewMaintenanceService(
		repositories.NewOrderRepository(db, logger.Logger),
		repositories.NewUserTokenRepository(db),
		notifier,
		cfg.Platform.AdminEmail,
		cfg.JWT.RefreshTokenExpiry,
		logger.Logger,
	)

	sender := notification.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	worker := NewWorker(sender, maintenance, workerMetrics, logger.Logger)

	// Create Asynq server
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Queues: map[string]int{
			notification.QueueEmails: 5,
			"default":                1,
		},
	})

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeEmailSend, worker.HandleEmailTask)

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	scheduler := cron.New()
	if err := worker.ScheduleJobs(scheduler, cfg.Platform.DigestCron, cfg.Platform.TokenCleanupCron); err != nil {
		logger.Logger.Fatal("Failed to schedule jobs", zap.Error(err))
	}
	scheduler.Start()

	metricsRouter := chi.NewRouter()
	metricsRouter.With(middleware.APIKeyMiddleware(cfg.APIKey)).Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.WorkerMetricsPort),
		Handler:           metricsRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started",
		zap.String("digestCron", cfg.Platform.DigestCron),
		zap.String("tokenCleanupCron", cfg.Platform.TokenCleanupCron))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")

	<-scheduler.Stop().Done()
	srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Logger.Error("Metrics server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Worker exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
