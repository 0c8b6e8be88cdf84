package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/akoval/fleetops/internal/config"
	"github.com/akoval/fleetops/internal/events"
	"github.com/akoval/fleetops/internal/fleet"
	"github.com/akoval/fleetops/internal/logging"
	"github.com/akoval/fleetops/internal/persist"
	"github.com/akoval/fleetops/internal/telemetry"
	"github.com/akoval/fleetops/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"mirror", cfg.Database.URL != "",
		"telemetry", cfg.Samsara.Token != "",
		"kafka", len(cfg.Kafka.Brokers) > 0,
	)

	ctx := context.Background()
	store := fleet.NewStore()

	// The mirror is Postgres when configured, otherwise process-local.
	var mirror persist.Mirror = persist.NewMemory()
	var pool *pgxpool.Pool
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

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		pg := persist.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure mirror schema", "error", err)
			os.Exit(1)
		}
		mirror = pg

		// The store hydrates once from the mirror and stays authoritative
		// afterwards.
		if err := persist.Hydrate(ctx, mirror, store); err != nil {
			slog.Error("failed to hydrate store from mirror", "error", err)
			os.Exit(1)
		}
		slog.Info("store hydrated from mirror",
			"trucks", len(store.Trucks()),
			"trailers", len(store.Trailers()),
			"cases", len(store.Cases()),
			"ledger", len(store.Ledger()),
		)
	}

	var provider web.TelemetryProvider
	if cfg.Samsara.Token != "" {
		provider = telemetry.NewClient(cfg.Samsara.BaseURL, cfg.Samsara.Token, cfg.Samsara.Timeout)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafka(cfg.Kafka.Brokers)
		defer kp.Close()
		publisher = kp
	}

	server := web.NewServer(store, web.Options{
		Mirror:         mirror,
		Provider:       provider,
		Events:         publisher,
		APIToken:       cfg.API.Token,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	// Serve in the background so signals can drive a graceful shutdown.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Server.Addr())
		errCh <- server.Start(cfg.Server.Addr(),
			cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("server stopped")
}
