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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"salonsked/internal/api"
	"salonsked/internal/config"
	"salonsked/internal/events"
	"salonsked/internal/metrics"
	"salonsked/internal/prefs"
	"salonsked/internal/schedule"
	"salonsked/internal/store"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Msg("failed to read .env")
	}

	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}

	database, err := store.NewDB(cfg.Database.Path, cfg.Database.Tables, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	var (
		rdb       *redis.Client
		selection prefs.Store = prefs.NewMemoryStore()
	)
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		selection = prefs.NewRedisStore(rdb)
	} else {
		logger.Warn().Msg("redis.address is empty; technician selections are kept in memory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus(logger)
	subscribeAudit(bus, &logger)

	settings, err := settingsFrom(cfg.Schedule)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid schedule settings")
	}
	svc := schedule.NewService(database, database, selection, bus, settings, logger)

	if err := config.WatchSchedule(ctx, cfgPath, 30*time.Second, logger, func(updated config.ScheduleConfig) {
		s, err := settingsFrom(updated)
		if err != nil {
			logger.Error().Err(err).Msg("failed to apply schedule settings")
			return
		}
		svc.UpdateSettings(s)
	}); err != nil {
		logger.Error().Err(err).Msg("config watch failed")
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		go store.NewBackupService(database, cfg.Backup, &logger).Start(ctx)
	}

	server := api.NewHTTPServer(cfg.Server.Addr, svc, api.RateLimit{
		PerSecond: cfg.Server.RateLimitPerSec,
		Burst:     cfg.Server.RateLimitBurst,
	}, logger)
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctxShutdown)
	}()

	if err := server.Start(); err != nil {
		logger.Error().Err(err).Msg("api server error")
	}
	logger.Info().Msg("salonsked stopped")
}

func settingsFrom(sc config.ScheduleConfig) (schedule.Settings, error) {
	loc, err := sc.Location()
	if err != nil {
		return schedule.Settings{}, err
	}
	return schedule.Settings{
		Location:            loc,
		DefaultInterval:     sc.DefaultInterval,
		LoadWindowDays:      sc.LoadWindowDays,
		BlockDefaultMinutes: sc.BlockDefaultMinutes,
	}, nil
}

func subscribeAudit(bus *events.EventBus, logger *zerolog.Logger) {
	audit := logger.With().Str("component", "audit").Logger()
	bus.Subscribe(events.EntrySaved, func(e events.Event) error {
		audit.Info().
			Str("owner", e.OwnerEmail).
			Str("entry_id", e.EntryID).
			Bool("created", e.Created).
			Str("technician_id", e.Entry.TechnicianID).
			Str("start", e.Entry.Date()+" "+e.Entry.StartTime).
			Msg("entry saved")
		return nil
	})
	bus.Subscribe(events.EntryDeleted, func(e events.Event) error {
		audit.Info().Str("owner", e.OwnerEmail).Str("entry_id", e.EntryID).Msg("entry deleted")
		return nil
	})
}

func startHealthServer(ctx context.Context, port int, database *store.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := database.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
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
