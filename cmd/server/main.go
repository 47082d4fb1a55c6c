package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"MarketPulse/internal/api"
	"MarketPulse/internal/broadcast"
	"MarketPulse/internal/cache"
	"MarketPulse/internal/config"
	"MarketPulse/internal/gateway"
	"MarketPulse/internal/generator"
	"MarketPulse/internal/market"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/scheduler"
	"MarketPulse/internal/stats"
	"MarketPulse/internal/store"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}
	logger.Info("MarketPulse starting",
		zap.String("env", cfg.App.Env),
		zap.Int("companies", len(cfg.Companies)),
		zap.Int("days", cfg.Generator.Days))

	// Init recorder
	var rec recorder.Recorder
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.Named("recorder"))
	if err != nil {
		logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		rec = recorder.NewNoopRecorder()
	} else {
		rec = sr
	}
	defer rec.Close()

	var ratios stats.RatioSource
	if cfg.Stats.SyntheticRatios {
		seed := cfg.Generator.Seed
		if seed != 0 {
			seed++
		}
		ratios = stats.NewSyntheticRatios(generator.NewRand(seed))
	}

	svc := market.NewService(store.New(), rec, cfg.Companies, market.Options{
		Days:         cfg.Generator.Days,
		Volatility:   cfg.Generator.Volatility,
		SkipWeekends: cfg.SkipWeekends(),
		TopMovers:    cfg.Broadcast.TopMovers,
		Rand:         generator.NewRand(cfg.Generator.Seed),
		Ratios:       ratios,
	}, logger.Named("market"))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Bootstrap(ctx); err != nil {
		logger.Fatal("bootstrap dataset", zap.Error(err))
	}

	// Optional Redis snapshot store
	var snaps *cache.RedisSnapshots
	if cfg.Redis.Addr != "" {
		snaps = cache.NewRedisSnapshots(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), cfg.Redis.SnapshotTTL)
		if err := snaps.Ping(ctx); err != nil {
			if cfg.Broadcast.Follow {
				logger.Fatal("redis unreachable in follow mode", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			}
			logger.Warn("redis unreachable, snapshots disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			snaps.Close()
			snaps = nil
		} else {
			defer snaps.Close()
		}
	}

	opts := broadcast.Options{SendTimeout: cfg.Broadcast.SendTimeout}
	if snaps != nil && !cfg.Broadcast.Follow {
		opts.Snapshots = snaps
	}
	bc := broadcast.NewBroadcaster(svc.Collector(), opts, logger.Named("broadcast"))
	bc.Start()

	// Init scheduler
	broadcastCron := cfg.Schedule.BroadcastCron
	if cfg.Broadcast.Follow {
		broadcastCron = ""
		go func() {
			err := snaps.Follow(ctx, func(payload []byte) {
				if err := bc.Relay(ctx, payload); err != nil && !errors.Is(err, broadcast.ErrStopped) {
					logger.Warn("relay snapshot failed", zap.Error(err))
				}
			})
			if err != nil {
				logger.Error("follow snapshots stopped", zap.Error(err))
			}
		}()
		logger.Info("following snapshots from redis", zap.String("addr", cfg.Redis.Addr))
	}
	sched := scheduler.NewScheduler(ctx, bc, svc, logger.Named("scheduler"))
	if err := sched.RegisterAll(broadcastCron, cfg.Schedule.RefreshCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers := api.NewHandlers(svc, bc, logger.Named("api"))
	router := api.NewRouter(handlers, gateway.NewServer(bc, logger.Named("gateway")), logger.Named("http"))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	sched.Stop()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Broadcast.DrainTimeout)
	if err := bc.Stop(drainCtx); err != nil {
		logger.Warn("broadcaster drain incomplete", zap.Error(err))
	}
	drainCancel()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
	logger.Info("MarketPulse stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
