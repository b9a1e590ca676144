package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/clientintel/config"
	"github.com/jordanlanch/clientintel/pkg/api/handlers"
	"github.com/jordanlanch/clientintel/pkg/cache"
	"github.com/jordanlanch/clientintel/pkg/dailyplan"
	"github.com/jordanlanch/clientintel/pkg/database"
	"github.com/jordanlanch/clientintel/pkg/export"
	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/jobs"
	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/jordanlanch/clientintel/pkg/metrics"
	custommiddleware "github.com/jordanlanch/clientintel/pkg/middleware"
	"github.com/jordanlanch/clientintel/pkg/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel)
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	engineCfg, err := config.LoadEngine(cfg.EngineConfigPath)
	if err != nil {
		log.Fatalf("❌ Failed to load engine config: %v", err)
	}
	if cfg.EngineConfigPath != "" {
		log.Printf("✅ Engine config loaded from %s", cfg.EngineConfigPath)
	}

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			Release:          "clientintel@" + version,
			SampleRate:       cfg.SentrySampleRate,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	var sslCfg *database.SSLConfig
	if cfg.DBSSLMode != "" {
		sslCfg = &database.SSLConfig{Mode: cfg.DBSSLMode}
	}
	db, err := database.NewClientWithPoolAndSSL(cfg.DatabaseDriver, cfg.DatabaseURL, database.DefaultPoolConfig(), sslCfg, appLog)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL, appLog)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Engine and planner
	engine, err := intelligence.NewService(engineCfg.Intelligence, appLog.With("component", "intelligence"))
	if err != nil {
		log.Fatalf("❌ Invalid engine config: %v", err)
	}
	planner, err := dailyplan.NewService(engine, engineCfg.DailyPlan, appLog.With("component", "dailyplan"))
	if err != nil {
		log.Fatalf("❌ Invalid daily plan config: %v", err)
	}

	snapshots := cache.NewAnalysisCache(redisClient, cfg.AnalysisCacheTTL)
	clientStore := store.New(db)
	recomputer := jobs.NewRecomputer(clientStore, engine, snapshots, prometheusMetrics, appLog.With("component", "recompute"))

	// Cron jobs
	schedule := ""
	if cfg.RecomputeEnabled() {
		schedule = cfg.RecomputeSchedule
	}
	cronManager := jobs.NewCronManager(recomputer, appLog.With("component", "cron"))
	if err := cronManager.SetupJobs(schedule); err != nil {
		log.Fatalf("❌ Invalid recompute schedule %q: %v", cfg.RecomputeSchedule, err)
	}
	cronManager.Start()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	rateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go rateLimiter.RunCleanup(cleanupCtx)

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				appLog.Warn("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
				return nil
			}
			appLog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true, // let Recover turn the panic into a 500
		}))
	}

	if cfg.MetricsEnabled {
		e.Use(prometheusMetrics.Middleware())
	}

	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	e.Use(rateLimiter.RateLimitMiddleware())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "Client Intelligence API",
			"version":     version,
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	h := &handlers.Handlers{
		Health:       handlers.NewHealthHandler(db, redisClient, prometheusMetrics),
		Intelligence: handlers.NewIntelligenceHandler(clientStore, engine, snapshots, recomputer, prometheusMetrics, appLog),
		DailyPlan:    handlers.NewDailyPlanHandler(clientStore, planner, export.NewService(), prometheusMetrics),
		Suggestions:  handlers.NewSuggestionsHandler(clientStore, engine, snapshots, prometheusMetrics, appLog),
		Interactions: handlers.NewInteractionHandler(clientStore, engine, snapshots, prometheusMetrics, appLog),
	}
	h.Register(e)

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Client Intelligence API starting on %s", address)
	log.Printf("🗄️  Database driver: %s", db.Driver)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Recompute schedule: %q (%d cron entries)", schedule, cronManager.Entries())

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	// Stop cron jobs; waits for a running recompute
	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
