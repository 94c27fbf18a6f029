package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/pedalworks/rosterd/internal/config"
	"github.com/pedalworks/rosterd/internal/logging"
	"github.com/pedalworks/rosterd/internal/notify"
	"github.com/pedalworks/rosterd/internal/source"
	"github.com/pedalworks/rosterd/internal/store"
	"github.com/pedalworks/rosterd/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"match_threshold", cfg.Match.Threshold,
		"exact_only", cfg.Match.ExactOnly,
	)

	ctx := context.Background()

	// Canonical store: Postgres when configured, memory otherwise.
	var (
		rosterStore store.Roster
		mappings    store.Mappings
	)
	if cfg.Database.URL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		}

		pg := store.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		rosterStore = pg
		mappings = pg
	} else {
		slog.Warn("DATABASE_URL not set, running on the in-memory store")
		mem := store.NewMemory()
		rosterStore = mem
		mappings = mem
	}

	// Local mapping cache in front of the canonical store.
	if cfg.Cache.Path != "" {
		cache, err := store.OpenSQLiteCache(cfg.Cache.Path)
		if err != nil {
			slog.Warn("mapping cache disabled", "error", err)
		} else {
			defer cache.Close()
			mappings = &store.CachedMappings{Primary: mappings, Cache: cache}
			slog.Info("mapping cache enabled", "path", cfg.Cache.Path)
		}
	}

	// Roster-changed events over Redis pub/sub, when configured.
	var notifier notify.Notifier = notify.Noop{}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, events disabled", "error", err)
		} else {
			notifier = notify.NewRedis(client, cfg.Redis.Channel)
			slog.Info("roster events enabled", "channel", cfg.Redis.Channel)
		}
	}

	// Upstream CSV fetcher.
	var fetcher *source.Fetcher
	if cfg.Source.RiderURL != "" || cfg.Source.CoachURL != "" {
		opts := []source.Option{source.WithTimeout(cfg.Source.Timeout)}
		if cfg.Source.AuthHeader != "" && cfg.Source.AuthToken != "" {
			opts = append(opts, source.WithHeader(cfg.Source.AuthHeader, cfg.Source.AuthToken))
		}
		fetcher = source.NewFetcher(opts...)
	}

	server := web.NewServer(cfg, rosterStore, mappings, fetcher, notifier)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
