// Package main is the entry point for the almanac server. It loads
// configuration, connects the optional Redis cache, loads preset and file
// calendars, and serves the JSON API until interrupted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	"github.com/keyxmakerx/almanac/internal/app"
	"github.com/keyxmakerx/almanac/internal/config"
	"github.com/keyxmakerx/almanac/internal/database"
	"github.com/keyxmakerx/almanac/internal/plugins/audit"
	"github.com/keyxmakerx/almanac/internal/plugins/calendar"
)

// shutdownTimeout is how long in-flight requests get to finish.
const shutdownTimeout = 10 * time.Second

func main() {
	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	setupLogging(cfg)

	slog.Info("starting almanac",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("almanac stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// --- Connect to Redis (optional) ---
	rdb, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var cache calendar.ResultCache
	if rdb != nil {
		defer rdb.Close()
		cache = calendar.NewRedisCache(rdb, cfg.Redis.TTL)
		slog.Info("connected to Redis")
	} else {
		slog.Info("REDIS_URL not set, result cache disabled")
	}

	// --- Calendars ---
	auditSvc := audit.NewAuditService(audit.NewAuditRepository(cfg.AuditCapacity))
	svc := calendar.NewCalendarService(calendar.NewCalendarRepository(), cache,
		calendar.WithChangeRecorder(audit.NewCalendarRecorder(auditSvc, slog.Default())))
	if err := svc.LoadPresets(ctx); err != nil {
		return err
	}

	var loader *calendar.DirLoader
	if cfg.CalendarDir != "" {
		loader = calendar.NewDirLoader(svc, cfg.CalendarDir, slog.Default())
		if err := loader.LoadAll(ctx); err != nil {
			return err
		}
	}

	// --- Create Application ---
	application := app.New(ctx, cfg, rdb, svc, auditSvc)
	application.RegisterRoutes()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := application.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if loader != nil {
		g.Go(func() error {
			return loader.Watch(gctx)
		})
	}

	// --- Graceful Shutdown ---
	// Runs on a signal, or when the server or watcher fails.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := application.Shutdown(sctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
		return nil
	})

	return g.Wait()
}

// setupLogging configures the global slog logger. Development uses text
// format for readability; production uses JSON for log aggregation.
func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
