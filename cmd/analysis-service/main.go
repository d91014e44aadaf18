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

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/delivery/consumer"
	delivery "golang-stock-watchlist/internal/analyzer/delivery/http"
	_ "golang-stock-watchlist/internal/analyzer/docs"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/internal/analyzer/service"
	"golang-stock-watchlist/pkg/badger"
	"golang-stock-watchlist/pkg/cache"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/postgres"
	"golang-stock-watchlist/pkg/redis"
	"golang-stock-watchlist/pkg/scheduler"
	"golang-stock-watchlist/pkg/telegram"
	"golang-stock-watchlist/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the watchlist analysis service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analysis Service", logger.Field("name", cfg.App.Name))

	loc, err := utils.LoadLocation(cfg.Analysis.Timezone)
	if err != nil {
		appLogger.Fatal("Invalid timezone", logger.ErrorField(err))
	}
	now := time.Now

	// Optional Redis: remote cache backend and trigger stream
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
	}

	// Snapshot storage
	var stateRepo repository.StateRepository
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			defer sqlDB.Close()
		}
		stateRepo = repository.NewPostgresStateRepository(db.DB, appLogger)
	case "badger":
		store, err := badger.NewDB(badger.Config{Path: cfg.Storage.BadgerPath})
		if err != nil {
			appLogger.Fatal("Failed to open badger store", logger.ErrorField(err))
		}
		defer store.Close()
		stateRepo = repository.NewBadgerStateRepository(store.Store, appLogger)
	default:
		appLogger.Fatal("Invalid storage backend", logger.StringField("backend", cfg.Storage.Backend))
	}

	stateSvc := service.NewStateService(stateRepo, appLogger)
	if err := stateSvc.Load(ctx); err != nil {
		appLogger.Fatal("Failed to load state", logger.ErrorField(err))
	}

	// Caches
	nameCache, spotCache, referenceCache := newCaches(cfg, appLogger, redisClient, now)

	// Repositories
	akToolsRepo := repository.NewAKToolsRepository(cfg, appLogger)
	yahooRepo := repository.NewYahooFinanceRepository(cfg, appLogger)
	tushareRepo := repository.NewTushareRepository(cfg, appLogger)
	tencentRepo := repository.NewTencentRepository(cfg, appLogger)
	sinaRepo := repository.NewSinaRepository(cfg, appLogger)

	searchRepos := []repository.NewsSearchRepository{repository.NewTavilyRepository(cfg, appLogger)}
	if cfg.GoogleNews.Enabled {
		searchRepos = append(searchRepos, repository.NewGoogleNewsRepository(cfg, appLogger))
	}
	var articleRepo repository.ArticleRepository
	if cfg.Article.EnrichShortContent {
		articleRepo = repository.NewArticleRepository(cfg, appLogger)
	}

	// LLM providers
	var llmRepos []repository.LLMRepository
	if cfg.Gemini.APIKey != "" {
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		llmRepos = append(llmRepos, repository.NewGeminiAIRepository(cfg, appLogger, genAiClient))
	}
	if cfg.OpenRouter.APIKey != "" {
		llmRepos = append(llmRepos, repository.NewOpenRouterRepository(cfg, appLogger))
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Services
	spotTables := service.NewTableCache("spot", spotCache, cfg.Cache.SpotTableTTL, akToolsRepo.GetSpotTable, appLogger).
		WithKey(repository.SpotTableName).
		WithLoadTimeout(cfg.Analysis.TableLoadTimeout)
	referenceTables := service.NewTableCache("reference", referenceCache, cfg.Cache.ReferenceTableTTL, tushareRepo.GetReferenceTable, appLogger).
		WithLoadTimeout(cfg.Analysis.TableLoadTimeout)

	generator := service.NewTextGenerator(cfg, appLogger, llmRepos...)
	priceResolver := service.NewPriceResolver(cfg, appLogger, spotTables, yahooRepo)
	historyResolver := service.NewHistoryResolver(cfg, appLogger, yahooRepo, akToolsRepo, now)
	moneyFlowResolver := service.NewMoneyFlowResolver(cfg, appLogger, akToolsRepo)
	nameResolver := service.NewNameResolver(cfg, appLogger, nameCache, referenceTables, tencentRepo, sinaRepo, yahooRepo)
	intradayResolver := service.NewIntradayResolver(cfg, appLogger, tencentRepo, yahooRepo)
	newsAggregator := service.NewNewsAggregator(cfg, appLogger, generator, articleRepo, now, searchRepos...)
	assembler := service.NewReportAssembler(appLogger, priceResolver, historyResolver, moneyFlowResolver, nameResolver, newsAggregator, generator, now)
	job := service.NewAnalysisJob(appLogger, stateSvc, assembler, notifier, loc, cfg.Analysis.StockPause, now)

	var trigger service.AnalysisTrigger
	var redisConsumer *consumer.RedisConsumer
	if redisClient != nil {
		if err := redisClient.EnsureGroup(ctx, common.RedisStreamAnalysisTrigger, common.RedisStreamGroup); err != nil {
			appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
		}
		trigger = service.NewStreamTrigger(appLogger, redisClient.Client, cfg.Redis.StreamMaxLen, now)
		taskSvc := service.NewAnalysisTaskService(appLogger, redisClient.Client, job)
		redisConsumer = consumer.NewRedisConsumer(taskSvc, cfg.Analysis.TriggerTimeout, appLogger)
		redisConsumer.Start(ctx)
	} else {
		trigger = service.NewLocalTrigger(appLogger, job, cfg.Analysis.TriggerTimeout)
	}

	daily := scheduler.NewDaily(loc, appLogger)
	settingsSvc := service.NewSettingsService(appLogger, stateSvc, daily, trigger, now)
	if err := settingsSvc.Start(ctx); err != nil {
		appLogger.Fatal("Failed to schedule daily analysis", logger.ErrorField(err))
	}
	daily.Start()

	watchlistSvc := service.NewWatchlistService(appLogger, stateSvc, nameResolver, now)
	reportSvc := service.NewReportService(stateSvc, loc, now)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	apiV1 := e.Group("/api/v1")
	delivery.NewStockHandler(watchlistSvc, intradayResolver, appLogger).RegisterRoutes(apiV1.Group("/stocks"))
	delivery.NewReportHandler(reportSvc, appLogger).RegisterRoutes(apiV1.Group("/reports"))
	settingsHandler := delivery.NewSettingsHandler(settingsSvc, trigger, appLogger)
	settingsHandler.RegisterRoutes(apiV1.Group("/settings"))
	settingsHandler.RegisterAnalysisRoutes(apiV1.Group("/analysis"))

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	daily.Stop()
	if redisConsumer != nil {
		redisConsumer.Stop()
	}

	appLogger.Info("Server exiting")
}

func newCaches(cfg *config.Config, log *logger.Logger, redisClient *redis.Client, now cache.Clock) (
	cache.Cache[string], cache.Cache[dto.SpotTable], cache.Cache[dto.ReferenceTable],
) {
	switch cfg.Cache.Backend {
	case "redis":
		if redisClient == nil {
			log.Fatal("Redis cache backend requires a redis host")
		}
		return cache.NewRedis[string](redisClient.Client, common.RedisKeyPrefixCache, now, log),
			cache.NewRedis[dto.SpotTable](redisClient.Client, common.RedisKeyPrefixCache, now, log),
			cache.NewRedis[dto.ReferenceTable](redisClient.Client, common.RedisKeyPrefixCache, now, log)
	case "memory":
		return cache.NewMemory[string](cfg.Cache.CleanupInterval, now),
			cache.NewMemory[dto.SpotTable](cfg.Cache.CleanupInterval, now),
			cache.NewMemory[dto.ReferenceTable](cfg.Cache.CleanupInterval, now)
	default:
		log.Fatal("Invalid cache backend", logger.StringField("backend", cfg.Cache.Backend))
		return nil, nil, nil
	}
}

// @title Stock Watchlist Analysis API
// @version 1.0
// @description Watchlists, daily AI analysis reports and intraday charts for US, HK and A-share stocks.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "analysis-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analysis-service CLI: %s\n", err)
		os.Exit(1)
	}
}
