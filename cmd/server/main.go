package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/config"
	"github.com/JonMunkholm/deeptable/internal/logging"
	"github.com/JonMunkholm/deeptable/internal/source"
	"github.com/JonMunkholm/deeptable/internal/web"
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
		"page_size", cfg.View.PageSize,
		"locale", cfg.View.Locale,
		"max_sessions", cfg.View.MaxSessions,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	cols, err := source.LoadColumns(cfg.Source.ColumnsFile)
	if err != nil {
		slog.Error("failed to load columns", "path", cfg.Source.ColumnsFile, "error", err)
		os.Exit(1)
	}
	reg, err := column.NewRegistry(cols)
	if err != nil {
		slog.Error("invalid columns", "path", cfg.Source.ColumnsFile, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var loader source.Loader
	if cfg.UsesDatabase() {
		pool, err := connect(ctx, cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		loader = source.NewPostgres(pool, cfg.Source.Table, cols, cfg.Source.Limit)
	} else {
		loader, err = source.NewFile(cfg.Source.DataFile, reg)
		if err != nil {
			slog.Error("invalid data file", "path", cfg.Source.DataFile, "error", err)
			os.Exit(1)
		}
	}

	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Source.LoadTimeout)
	records, err := loader.Load(loadCtx)
	cancelLoad()
	if err != nil {
		slog.Error("failed to load records", "error", err)
		os.Exit(1)
	}
	slog.Info("dataset loaded", "columns", len(cols), "records", len(records))

	data, err := web.NewDataset(cols, loader, records)
	if err != nil {
		slog.Error("invalid dataset", "error", err, "hint", source.Messages.Format(err))
		os.Exit(1)
	}

	server := web.NewServer(cfg, data)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go server.Sessions().StartSweeper(jobCtx, cfg.View.SweepInterval)

	// Graceful shutdown. Start returns as soon as Shutdown begins, so main
	// waits on done for in-flight requests and reloads to finish.
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// connect opens and pings the connection pool for a table source.
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}
