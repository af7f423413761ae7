package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/infrastructure/cache"
	"github.com/erp/shipping/internal/infrastructure/config"
	"github.com/erp/shipping/internal/infrastructure/eshipz"
	"github.com/erp/shipping/internal/infrastructure/logger"
	"github.com/erp/shipping/internal/infrastructure/persistence"
	"github.com/erp/shipping/internal/infrastructure/scheduler"
	"github.com/erp/shipping/internal/infrastructure/storage"
	"github.com/erp/shipping/internal/interfaces/http/handler"
	"github.com/erp/shipping/internal/interfaces/http/middleware"
	"github.com/erp/shipping/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting shipping connector",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	countryRepo := persistence.NewGormCountryRepository(db.DB)
	deliveryNoteRepo := persistence.NewGormDeliveryNoteRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)

	// Rate quote cache: Redis when enabled, in-memory otherwise
	cacheFactory := cache.NewRateCacheFactory(cfg.Redis, cfg.Cache.RatesTTL, cache.WithLogger(log))
	var rateCache shippingapp.RateCache
	if cfg.Redis.Enabled {
		rateCache, err = cacheFactory.CreateCache()
		if err != nil {
			log.Fatal("Failed to create rate cache", zap.Error(err))
		}
	} else {
		rateCache = cacheFactory.CreateInMemoryCache()
	}

	// Label archive: S3-compatible storage when enabled
	var labelArchiver shippingapp.LabelArchiver
	if cfg.Storage.Enabled {
		s3Archiver, err := storage.NewS3LabelArchiver(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize label storage", zap.Error(err))
		}
		ensureCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s3Archiver.EnsureBucket(ensureCtx); err != nil {
			cancel()
			log.Fatal("Failed to ensure label bucket", zap.Error(err))
		}
		cancel()
		labelArchiver = s3Archiver
		log.Info("Label archiving enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		labelArchiver = storage.NewNoopLabelArchiver()
	}

	// Carrier gateway
	gateway, err := eshipz.NewAdapter(&eshipz.Config{
		BaseURL:        cfg.Eshipz.BaseURL,
		TimeoutSeconds: cfg.Eshipz.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to initialize carrier gateway", zap.Error(err))
	}

	// Initialize application services
	shipmentService := shippingapp.NewShipmentService(
		shipmentRepo,
		addressRepo,
		countryRepo,
		deliveryNoteRepo,
		invoiceRepo,
		settingsRepo,
		gateway,
		rateCache,
		labelArchiver,
		log,
	)
	settingsService := shippingapp.NewSettingsService(settingsRepo, log)

	// Initialize handlers
	shipmentHandler := handler.NewShipmentHandler(shipmentService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(shipmentHandler).
		Register(settingsHandler).
		Register(systemHandler)
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Background tracking refresh
	var trackingScheduler *scheduler.TrackingScheduler
	if cfg.Scheduler.Enabled {
		trackingScheduler, err = scheduler.NewTrackingScheduler(scheduler.TrackingSchedulerConfig{
			Enabled:       cfg.Scheduler.Enabled,
			Interval:      cfg.Scheduler.Interval,
			MaxConcurrent: cfg.Scheduler.MaxConcurrent,
			JobTimeout:    cfg.Scheduler.JobTimeout,
			PageSize:      cfg.Scheduler.PageSize,
		}, shipmentRepo, shipmentService, log)
		if err != nil {
			log.Fatal("Failed to initialize tracking scheduler", zap.Error(err))
		}
		if err := trackingScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start tracking scheduler", zap.Error(err))
		}
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if trackingScheduler != nil {
		if err := trackingScheduler.Stop(ctx); err != nil {
			log.Error("Error stopping tracking scheduler", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
