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

	"go.uber.org/zap/zapcore"

	"github.com/rahmatagung/scorecenter/internal/app"
	"github.com/rahmatagung/scorecenter/internal/config"
	"github.com/rahmatagung/scorecenter/internal/observability"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	})).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("service exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownUptrace(flushCtx); err != nil {
			logger.Warn("uptrace shutdown", "error", err)
		}
	}()

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stopPyroscope(); err != nil {
			logger.Warn("pyroscope shutdown", "error", err)
		}
	}()

	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := observability.StopPprofServer(pprofServer, logger, shutdownTimeout); err != nil {
			logger.Warn("pprof shutdown", "error", err)
		}
	}()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("http server stopped")
	return nil
}

func slogLevel(level logging.Level) slog.Level {
	switch level {
	case zapcore.DebugLevel:
		return slog.LevelDebug
	case zapcore.WarnLevel:
		return slog.LevelWarn
	case zapcore.ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
