package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/casalista/purchase-service/docs"

	"github.com/casalista/purchase-service/config"
	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/fetcher"
	"github.com/casalista/purchase-service/internal/handlers"
	"github.com/casalista/purchase-service/internal/jobs"
	"github.com/casalista/purchase-service/internal/middleware"
	"github.com/casalista/purchase-service/internal/storage"
	"github.com/casalista/purchase-service/internal/sweepers"
	"github.com/casalista/purchase-service/internal/taskqueue"
	"github.com/casalista/purchase-service/internal/telemetry"
	"github.com/casalista/purchase-service/internal/workers"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting purchase service")

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupTelemetry := telemetry.MustInit(ctx, telemetry.GetConfigFromEnv())
	defer cleanupTelemetry(context.Background())

	if err := database.Connect(
		ctx,
		dbURL,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	store, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	handlers.SetUploadStorage(store)

	queue := taskqueue.New(database.Pool())
	client := fetcher.NewClient(fetcher.Config{
		MinIntervalMs:    cfg.Portal.MinIntervalMs,
		MaxRetries:       cfg.Portal.MaxRetries,
		InitialBackoffMs: cfg.Portal.InitialBackoffMs,
		MaxBackoffMs:     cfg.Portal.MaxBackoffMs,
	})
	importWorker := workers.StartImportWorker(ctx, queue, client, cfg.Portal.URL, store)

	taskSweeper := sweepers.NewTaskQueueSweeper(database.Pool(), logger, 5*time.Minute, 15*time.Minute)
	go taskSweeper.Start(ctx)

	retention := jobs.NewRetentionManager(database.Pool(), jobs.DefaultRetentionConfig(), logger)
	retention.Start()

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.Auth.InternalAPIKey))
	internal.Use(middleware.ServiceRateLimitMiddleware(50, 100))
	{
		internal.GET("/health", handlers.HealthCheck)

		internal.POST("/families", handlers.CreateFamily)
		internal.GET("/families", handlers.ListFamilies)
		internal.GET("/families/:familyId", handlers.GetFamily)

		family := internal.Group("/families/:familyId")
		{
			family.GET("/purchases", handlers.ListPurchases)
			family.POST("/purchases", handlers.CreateManualPurchase)
			family.GET("/purchases/:purchaseId", handlers.GetPurchase)
			family.DELETE("/purchases/:purchaseId", handlers.DeletePurchase)

			family.GET("/comparison", handlers.GetComparison)
			family.GET("/insights/monthly-spend", handlers.GetMonthlySpend)
			family.GET("/reports/spending", handlers.ExportSpendingReport)

			family.PUT("/budgets", handlers.SetBudget)
			family.GET("/budgets", handlers.ListBudgets)

			family.POST("/lists", handlers.CreateShoppingList)
			family.GET("/lists", handlers.ListShoppingLists)
			family.GET("/lists/:listId", handlers.GetShoppingList)
			family.PATCH("/lists/:listId", handlers.SetListStatus)
			family.POST("/lists/:listId/entries", handlers.AddListEntry)
			family.PATCH("/lists/:listId/entries/:entryId", handlers.CheckListEntry)
			family.DELETE("/lists/:listId/entries/:entryId", handlers.RemoveListEntry)

			family.POST("/imports/nfce", handlers.ImportNFCe)
			family.POST("/imports/csv", handlers.ImportCSV)
			family.GET("/imports", handlers.ListImportRuns)
			family.GET("/imports/:runId", handlers.GetImportRun)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	retention.Stop()
	taskSweeper.Stop()
	importWorker.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "purchase-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
