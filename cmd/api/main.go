package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servicehours/internal/api"
	"servicehours/internal/config"
	"servicehours/internal/database"
	"servicehours/internal/domain"
	"servicehours/internal/events"
	"servicehours/internal/logging"
	"servicehours/internal/metrics"
	"servicehours/internal/repository"
	"servicehours/internal/service"
	"servicehours/internal/slots"
	"servicehours/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}
	cache := initCache(cfg, redisClient, &logger)

	eventBus := events.NewEventBus()
	eventBus.OnError(func(event *events.Event, err error) {
		logger.Error().Err(err).Str("event_id", event.ID).Str("type", event.Type).Msg("event handler failed")
	})

	slotService := service.NewSlotService(db, db, cache, slots.SystemClock, loc, &logger)
	scheduleService := service.NewScheduleService(db, db, eventBus, slots.SystemClock, &logger)
	eventBus.Subscribe(events.EventServiceHoursChanged, slotService.HandleScheduleEvent)

	startMetrics(ctx, cfg, &logger)
	startWorkers(ctx, cfg, db, slotService, eventBus, &logger)

	grpcServer, err := api.NewGRPCServer(&cfg.API, slotService, scheduleService, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("create grpc server")
		return err
	}

	httpServer := api.NewHTTPServer(cfg.API, slotService, scheduleService, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "api-main")

	return cfg, logger, closer, nil
}

// initDatabase opens the schedule store and seeds it on first start.
func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	if cfg.Database.SeedFile == "" {
		return db, nil
	}

	existing, err := db.ListRestaurants(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(existing) > 0 {
		logger.Debug().Int("restaurants", len(existing)).Msg("database already populated, seed skipped")
		return db, nil
	}

	seed, err := database.LoadSeed(cfg.Database.SeedFile)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.ApplySeed(ctx, seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply seed: %w", err)
	}
	logger.Info().Str("seed_file", cfg.Database.SeedFile).Int("restaurants", len(seed.Restaurants)).Msg("database seeded")
	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initCache returns nil when caching is disabled; the in-memory cache backs redis when both are present.
func initCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SlotCache {
	if !cfg.Cache.Enabled {
		return nil
	}

	memory := repository.NewMemorySlotCache(cfg.CacheTTL())
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverSlotCache(repository.NewRedisSlotCache(redisClient, cfg.CacheTTL()), memory, logger)
}

func startWorkers(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	slotService *service.SlotService,
	eventBus *events.EventBus,
	logger *zerolog.Logger,
) {
	if cfg.Warmer.Enabled && cfg.Cache.Enabled {
		warmer := worker.NewCacheWarmer(
			db,
			slotService,
			cfg.Warmer.Days,
			cfg.WarmInterval(),
			worker.RetryPolicy{MaxRetries: cfg.Warmer.MaxRetries},
			logger,
		)
		eventBus.Subscribe(events.EventServiceHoursChanged, warmer.HandleScheduleEvent)
		go warmer.Start(ctx)
	}

	backup := database.NewBackupService(db, cfg.Backup, cfg.BackupInterval(), logger)
	go backup.Start(ctx)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	go func() {
		if !cfg.API.GRPC.Enabled {
			return
		}
		if err := grpcServer.Serve(); err != nil {
			logger.Error().Err(err).Msg("grpc server stopped")
		}
	}()

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Str("grpc_addr", grpcServer.Addr()).Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.Shutdown(shutdownCtx)
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
