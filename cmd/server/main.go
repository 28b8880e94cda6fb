package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"airhealth/internal/config"
	"airhealth/internal/fetch"
	"airhealth/internal/infrastructure"
	"airhealth/internal/operations"
	"airhealth/internal/store"
	transporthttp "airhealth/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create directories: %v\n", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = cfg.Paths.LogPath("server.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	client := fetch.NewClient(cfg.Sources, logger)
	st := store.NewStore(&cfg.Paths, logger)
	manager := operations.NewManager(client, st, &cfg.Paths, logger)
	handler := transporthttp.NewHandler(manager, st, logger)
	router := transporthttp.NewRouter(handler, logger)

	// Monthly schedule: on the 2nd of each month process the month
	// that just closed. The period is computed from the tick time and
	// passed explicitly; nothing below the scheduler reads the clock.
	scheduler := gocron.NewScheduler(time.UTC)
	_, err = scheduler.Every(1).Month(2).At("02:00").Do(func() {
		period := previousMonth(time.Now().UTC())
		logger.Info("scheduled pipeline run", slog.String("period", period))
		if _, err := manager.Run(context.Background(), period); err != nil {
			logger.Error("scheduled pipeline run failed",
				slog.String("period", period),
				slog.String("error", err.Error()))
		}
	})
	if err != nil {
		logger.Error("failed to schedule monthly run", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", slog.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// previousMonth formats the month before t as YYYY-MM.
func previousMonth(t time.Time) string {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, -1).Format("2006-01")
}
