package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bradykim7/menza/internal/auth"
	"github.com/bradykim7/menza/internal/lease"
	"github.com/bradykim7/menza/internal/notify"
	"github.com/bradykim7/menza/internal/snapshot"
	"github.com/bradykim7/menza/internal/storage"
	"github.com/bradykim7/menza/internal/watcher"
	"github.com/bradykim7/menza/pkg/config"
	"github.com/bradykim7/menza/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer zapLogger.Sync()

	log := zapLogger.Named("statuswatch")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := cfg.ValidateWatcher(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	// Create context that will be canceled on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sc := make(chan os.Signal, 1)
		signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
		<-sc
		log.Info("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	db, err := storage.NewMongoDB(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := db.Disconnect(); err != nil {
			log.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()

	snapshots, err := snapshot.OpenSQLiteStore(cfg.SnapshotDBPath, log)
	if err != nil {
		log.Fatal("Failed to open snapshot store", zap.Error(err))
	}
	defer snapshots.Close()

	leases := newLeaseManager(cfg, log)

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatal("Failed to create Discord session", zap.Error(err))
	}
	dispatcher := notify.NewDiscordDispatcher(session, notify.DefaultSendInterval, logger.New("dispatcher"))
	defer dispatcher.Close()

	tokens := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)

	metrics := watcher.NewMetrics(prometheus.DefaultRegisterer, cfg.Environment)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, log)
	}

	interval := time.Duration(cfg.WatchIntervalMinutes) * time.Minute

	// The lease lives as long as one period; runs are cut off shortly before it expires
	opts := watcher.DefaultOptions()
	opts.NotifyOnFirstSight = cfg.NotifyOnFirstSight
	opts.PruneSnapshots = cfg.PruneSnapshots
	opts.LeaseTTL = interval

	poller := watcher.NewPoller(watcher.Dependencies{
		Session:     auth.NewTokenSession(tokens, cfg.SessionToken, cfg.SessionTokenFile, log),
		Users:       storage.NewUserRepository(db, log),
		Foods:       storage.NewFoodRepository(db, log),
		Restaurants: storage.NewRestaurantRepository(db, log),
		Snapshots:   snapshots,
		Notifier:    notify.NewStatusNotifier(dispatcher, cfg.Language, log),
		Leases:      leases,
		Metrics:     metrics,
	}, opts, log)

	scheduler := watcher.NewScheduler(ctx, watcher.SchedulerOptions{
		RetryDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		Constraints: []watcher.Constraint{watcher.NewBatteryConstraint(cfg.MinBatteryPercent)},
	}, log)

	log.Info("Status watcher configured",
		zap.Duration("interval", interval),
		zap.String("language", cfg.Language))

	scheduler.SchedulePeriodic(watcher.LeaseName, interval, poller.Activate)

	// Blocks until the context is canceled
	scheduler.Wait()

	stats := poller.GetStats()
	log.Info("Status watcher shut down successfully",
		zap.Int("runs", stats.RunCount),
		zap.Int("notified", stats.TotalNotified))
}

// newLeaseManager uses Redis when configured so several watcher instances
// never run the same check concurrently
func newLeaseManager(cfg *config.Config, log *zap.Logger) lease.Manager {
	if cfg.RedisAddr == "" {
		return lease.NewMemoryManager()
	}

	manager, err := lease.NewRedisManager(lease.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-process lease", zap.Error(err))
		return lease.NewMemoryManager()
	}
	return manager
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Info("Serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Metrics server stopped", zap.Error(err))
	}
}
