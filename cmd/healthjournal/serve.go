package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/healthjournal/backend/internal/cache"
	"github.com/JonnyWalker81/healthjournal/backend/internal/config"
	"github.com/JonnyWalker81/healthjournal/backend/internal/handlers"
	"github.com/JonnyWalker81/healthjournal/backend/internal/logger"
	"github.com/JonnyWalker81/healthjournal/backend/internal/middleware"
	"github.com/JonnyWalker81/healthjournal/backend/internal/repository"
	"github.com/JonnyWalker81/healthjournal/backend/internal/service"
	"github.com/JonnyWalker81/healthjournal/backend/pkg/supabase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if port != "" {
		cfg.Server.Port = port
	}

	log := newLogger(cfg.Logging)
	log.Info("starting health journal API server",
		logger.String("env", cfg.Server.Env),
		logger.String("supabase_url", cfg.Supabase.URL),
	)

	engineCfg, err := cfg.Analytics.EngineConfig()
	if err != nil {
		return fmt.Errorf("invalid analytics config: %w", err)
	}

	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	logRepo := repository.NewDailyLogRepository(supabaseClient)
	symptomRepo := repository.NewSymptomRepository(supabaseClient)

	reports, closeCache := newReportCache(cmd.Context(), cfg.Redis, log)
	defer closeCache()

	intelligenceService := service.NewIntelligenceService(logRepo, symptomRepo, reports, service.IntelligenceConfig{
		WindowDays: cfg.Analytics.WindowDays,
		Engine:     engineCfg,
	})

	analyticsHandler := handlers.NewAnalyticsHandler(intelligenceService)
	insightsHandler := handlers.NewInsightsHandler(intelligenceService, engineCfg.MaxInsights)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log))
	router.Use(middleware.SecurityHeaders(cfg.Server.Env == "production"))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"env":    cfg.Server.Env,
			"cache":  reports.Stats(),
		})
	})

	refreshChain := []gin.HandlerFunc{insightsHandler.RefreshInsights}
	if cfg.RateLimit.InsightsPerMinute > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.InsightsPerMinute, time.Minute, "insights")
		defer limiter.Stop()
		refreshChain = append([]gin.HandlerFunc{middleware.RateLimit(limiter)}, refreshChain...)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(supabaseClient))
	{
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/statistics/:metric", analyticsHandler.GetStatistics)
			analytics.GET("/correlation", analyticsHandler.GetCorrelation)
			analytics.GET("/health-score", analyticsHandler.GetHealthScore)
			analytics.GET("/streaks", analyticsHandler.GetStreaks)
			analytics.GET("/report", analyticsHandler.GetReport)
		}

		insights := v1.Group("/insights")
		{
			insights.GET("", insightsHandler.GetInsights)
			insights.POST("/refresh", refreshChain...)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) logger.Logger {
	level := cfg.Level
	if logLevel != "" {
		level = logLevel
	}
	format := cfg.Format
	if logFormat != "" {
		format = logFormat
	}

	l := logger.New(logger.Config{
		Level:   logger.ParseLevel(level),
		Format:  format,
		Backend: cfg.Backend,
	})
	logger.SetDefault(l)
	return l
}

// newReportCache connects to Redis when configured and falls back to no
// caching when it is not reachable
func newReportCache(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (cache.ReportCache, func()) {
	if cfg.Addr == "" {
		log.Info("redis not configured, analysis reports will not be cached")
		return cache.NopReportCache{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, analysis reports will not be cached",
			logger.String("addr", cfg.Addr),
			logger.Err(err),
		)
		_ = client.Close()
		return cache.NopReportCache{}, func() {}
	}

	log.Info("caching analysis reports in redis",
		logger.String("addr", cfg.Addr),
		logger.Duration("ttl", cfg.TTL),
	)
	return cache.NewRedisReportCache(client, cfg.TTL), func() { _ = client.Close() }
}
