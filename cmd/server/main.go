package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"promo_watch/internal/api"
	"promo_watch/internal/config"
	"promo_watch/internal/extractor"
	"promo_watch/internal/publisher"
	"promo_watch/internal/scheduler"
	"promo_watch/internal/service"
	"promo_watch/internal/storage/minio"
	"promo_watch/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Optional moderation-queue publisher.
	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	// Optional object storage for banner image uploads.
	var objectStorage service.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		store, err := minio.New(minio.Config{
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			Bucket:        cfg.Storage.Bucket,
			UseSSL:        cfg.Storage.UseSSL,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Error("failed to create object storage client", "error", err)
			os.Exit(1)
		}
		objectStorage = store
	}

	siteStore := postgres.NewSiteStore(db)
	postStore := postgres.NewSuggestedPostStore(db)
	bannerStore := postgres.NewBannerStore(db)
	txManager := postgres.NewTransactionManager(db)

	fetcher := extractor.NewFetcher(extractor.FetcherConfig{
		Timeout:        cfg.Crawler.Timeout,
		MaxAttempts:    cfg.Crawler.MaxAttempts,
		InitialBackoff: cfg.Crawler.InitialBackoff,
		MaxBackoff:     cfg.Crawler.MaxBackoff,
	}, logger)

	contentExtractor := extractor.New(extractor.Config{
		MaxCandidates:  cfg.Crawler.MaxCandidates,
		MinTitleLength: cfg.Crawler.MinTitleLength,
	}, logger)

	crawlService := service.NewCrawlService(
		siteStore,
		postStore,
		fetcher,
		contentExtractor,
		pub,
		service.CrawlConfig{
			ProbeImages:  cfg.Crawler.ProbeImages,
			ProbeTimeout: cfg.Crawler.ProbeTimeout,
		},
		logger,
	)

	sched, err := scheduler.New(crawlService, siteStore, scheduler.Config{
		Timezone:     cfg.Scheduler.Timezone,
		CrawlTimeout: cfg.Scheduler.CrawlTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	siteService := service.NewSiteService(siteStore, sched, logger)
	suggestionService := service.NewSuggestionService(postStore, bannerStore, txManager, cfg.Banners.DefaultWindow, logger)
	bannerService := service.NewBannerService(bannerStore, objectStorage, cfg.Banners.DefaultWindow, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	go bannerService.RunSweeper(ctx, cfg.Banners.SweepInterval)

	router := api.NewRouter(
		api.NewSiteHandler(siteService, crawlService),
		api.NewSuggestionHandler(suggestionService),
		api.NewBannerHandler(bannerService),
		logger,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}

	sched.Stop()
	cancel()

	logger.Info("shutdown complete")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
