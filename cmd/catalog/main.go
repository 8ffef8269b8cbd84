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

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"scholarship_catalog/internal/api"
	"scholarship_catalog/internal/cache"
	"scholarship_catalog/internal/catalog"
	"scholarship_catalog/internal/config"
	"scholarship_catalog/internal/metrics"
	"scholarship_catalog/internal/publisher"
	"scholarship_catalog/internal/scheduler"
	"scholarship_catalog/internal/service"
	"scholarship_catalog/internal/source/upstream"
	"scholarship_catalog/internal/storage/postgres"
	"scholarship_catalog/internal/tracking"
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

	if err := run(cfg, logger); err != nil {
		logger.Error("catalog stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	loc, err := cfg.Catalog.Location()
	if err != nil {
		return err
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to database")

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:             cfg.RabbitMQ.URL,
		Exchange:        cfg.RabbitMQ.Exchange,
		RoutingKey:      cfg.RabbitMQ.RoutingKey,
		QueueName:       cfg.RabbitMQ.QueueName,
		EventRoutingKey: cfg.RabbitMQ.EventRoutingKey,
		EventQueueName:  cfg.RabbitMQ.EventQueueName,
	}, logger)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, running without snapshot cache", "error", err)
		} else {
			defer redisClient.Close()
			logger.Info("connected to redis", "addr", cfg.Redis.Addr)
		}
	}

	m := metrics.New()
	snapshotCache := cache.New(redisClient, "catalog:", cfg.Redis.TTL, logger)

	scholarshipStore := postgres.NewScholarshipStore(db)
	syncStateStore := postgres.NewSyncStateStore(db)
	txManager := postgres.NewTransactionManager(db)

	regions := catalog.DefaultRegions()
	if len(cfg.Catalog.Regions) > 0 {
		regions = catalog.NewRegionMap(cfg.Catalog.Regions)
	}
	cat := catalog.New(catalog.Settings{
		Location:         loc,
		UrgentWithinDays: cfg.Catalog.UrgentWithinDays,
		Regions:          regions,
	})

	var sink tracking.Sink = tracking.LogSink{Logger: logger}
	if cfg.Tracking.Enabled {
		sink = rabbitMQ
	}
	dispatcher := tracking.NewDispatcher(sink, m, cfg.Tracking.BufferSize, logger)

	source := upstream.New(upstream.Config{
		ID:                cfg.API.SourceID,
		Name:              cfg.API.SourceName,
		BaseURL:           cfg.API.BaseURL,
		PageSize:          cfg.API.PageSize,
		Timeout:           cfg.API.Timeout,
		MaxAttempts:       cfg.API.Retry.MaxAttempts,
		InitialBackoff:    cfg.API.Retry.InitialBackoff,
		MaxBackoff:        cfg.API.Retry.MaxBackoff,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Location:          loc,
	}, logger)

	syncService := service.NewSyncService(
		source,
		scholarshipStore,
		syncStateStore,
		txManager,
		rabbitMQ,
		snapshotCache,
		logger,
		cfg.Sync,
	)
	sched := scheduler.NewScheduler(syncService, cfg.Sync.Interval, cfg.Sync.Timeout, m, logger)

	browse := service.NewBrowseService(cat, scholarshipStore, snapshotCache, dispatcher, m, nil, logger)

	router := api.NewRouter(api.RouterConfig{
		Handler:  api.NewHandler(browse, loc),
		Metrics:  m.Handler(),
		Recorder: m,
		Checks: map[string]api.Checker{
			"postgres": txManager,
			"redis":    snapshotCache,
		},
		Logger: logger,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := sched.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	logger.Info("starting scholarship catalog",
		"source", source.Name(),
		"interval", cfg.Sync.Interval,
		"max_pages", cfg.Sync.MaxPagesPerSync,
		"timezone", loc.String(),
	)

	return g.Wait()
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
