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
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/profactive/backend/docs"
	"github.com/profactive/backend/internal/handlers"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/internal/notification"
	"github.com/profactive/backend/internal/repositories"
	"github.com/profactive/backend/internal/services"
	"github.com/profactive/backend/internal/storage"
	"github.com/profactive/backend/libs/auth/middleware"
	"github.com/profactive/backend/libs/auth/service"
	"github.com/profactive/backend/libs/config"
	"github.com/profactive/backend/libs/logger"
	loggerMiddleware "github.com/profactive/backend/libs/logger/middleware"
	"github.com/profactive/backend/libs/metrics"
	sharedMiddleware "github.com/profactive/backend/libs/middlewares"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	// formRateLimit bounds public form posts (orders, referrals, auth) per IP
	formRateLimit = 10
	dbStatsPeriod = 15 * time.Second
)

// @title PROFACTIVE Course Platform API
// @version 1.0
// @description API for the course catalogue, orders, learning progress and quizzes

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
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

	logger.Logger.Info("Starting PROFACTIVE API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis backs the email queue
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Warn("Redis is not reachable, emails will not be queued until it is", zap.Error(err))
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry, "api")

	statsCtx, stopStats := context.WithCancel(context.Background())
	defer stopStats()
	go recordDBStats(statsCtx, db, appMetrics)

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	userTokenRepo := repositories.NewUserTokenRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	contentRepo := repositories.NewContentRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	quizRepo := repositories.NewQuizRepository(db)
	orderRepo := repositories.NewOrderRepository(db, logger.Logger)
	orderedContentRepo := repositories.NewOrderedContentRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	attemptRepo := repositories.NewQuizAttemptRepository(db)
	certificateRepo := repositories.NewCertificateRepository(db)
	referralRepo := repositories.NewReferralRepository(db)
	faqRepo := repositories.NewFAQRepository(db)
	blogRepo := repositories.NewBlogRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)

	notifier := notification.NewQueueNotifier(asynqClient, appMetrics, logger.Logger)
	mediaStorage := storage.NewLocalStorage(cfg.Platform.MediaPath)

	// Initialize services
	authService := services.NewAuthService(userRepo, userTokenRepo, orderRepo, tokenGenerator, logger.Logger)
	profileService := services.NewProfileService(userRepo)
	adminUserService := services.NewAdminUserService(userRepo, orderRepo, notifier, cfg.Platform.SiteURL, logger.Logger)
	catalogueService := services.NewCatalogueService(categoryRepo, courseRepo, contentRepo, reviewRepo, quizRepo)
	reviewService := services.NewReviewService(reviewRepo, courseRepo)
	orderService := services.NewOrderService(orderRepo, orderedContentRepo, courseRepo, userRepo, referralRepo, notifier,
		appMetrics, logger.Logger, services.OrderServiceConfig{
			AdminEmail:      cfg.Platform.AdminEmail,
			SiteURL:         cfg.Platform.SiteURL,
			DefaultDiscount: cfg.Platform.DefaultReferralDiscount,
		})
	learningService := services.NewLearningService(orderRepo, orderedContentRepo, progressRepo, quizRepo, attemptRepo,
		certificateRepo, appMetrics, logger.Logger)
	quizService := services.NewQuizService(orderRepo, quizRepo, attemptRepo, certificateRepo, appMetrics, logger.Logger)
	referralService := services.NewReferralService(referralRepo, notifier, cfg.Platform.SiteURL,
		cfg.Platform.DefaultReferralDiscount, logger.Logger)
	contentService := services.NewContentService(faqRepo, blogRepo, documentRepo, mediaStorage, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry, logger.Logger)
	profileHandler := handlers.NewProfileHandler(profileService, logger.Logger)
	catalogueHandler := handlers.NewCatalogueHandler(catalogueService, reviewService, logger.Logger)
	orderHandler := handlers.NewOrderHandler(orderService, learningService, logger.Logger)
	progressHandler := handlers.NewProgressHandler(learningService, logger.Logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger.Logger)
	marketingHandler := handlers.NewMarketingHandler(contentService, referralService, cfg.Platform.SiteURL+"/courses/", logger.Logger)
	adminHandler := handlers.NewAdminHandler(orderService, adminUserService, reviewService, logger.Logger)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": db.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}, logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokenGenerator)
	optionalAuthMiddleware := middleware.OptionalAuthMiddleware(tokenGenerator)
	adminMiddleware := middleware.RoleMiddleware(tokenGenerator, int(models.RoleAdmin))
	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(appMetrics.Middleware)
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	healthHandler.RegisterRoutes(r)
	r.With(apiKeyMiddleware).Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Public forms get a stricter per-IP limit
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(formRateLimit, time.Minute))
			authHandler.RegisterRoutes(r)
		})

		profileHandler.RegisterRoutes(r, authMiddleware)
		catalogueHandler.RegisterRoutes(r, authMiddleware)
		orderHandler.RegisterRoutes(r, authMiddleware,
			chi.Chain(httprate.LimitByIP(formRateLimit, time.Minute), optionalAuthMiddleware).Handler)
		progressHandler.RegisterRoutes(r, authMiddleware)
		quizHandler.RegisterRoutes(r, authMiddleware)
		marketingHandler.RegisterRoutes(r)

		// Register admin routes with role middleware
		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			adminHandler.RegisterRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "profactive_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// recordDBStats publishes connection pool stats until ctx is done
func recordDBStats(ctx context.Context, db *sql.DB, m *metrics.Metrics) {
	ticker := time.NewTicker(dbStatsPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			m.RecordDBPoolStats(stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount, stats.WaitDuration)
		}
	}
}
