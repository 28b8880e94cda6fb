package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"airhealth/internal/config"
	"airhealth/internal/fetch"
	"airhealth/internal/infrastructure"
	"airhealth/internal/operations"
	"airhealth/internal/store"
)

func main() {
	month := flag.String("month", "", "period to fetch (YYYY-MM), required")
	flag.Parse()

	if *month == "" {
		fmt.Fprintln(os.Stderr, "Error: -month is required (YYYY-MM)")
		flag.Usage()
		os.Exit(1)
	}
	if err := operations.ValidatePeriod(*month); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create directories: %v\n", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = cfg.Paths.LogPath("fetcher.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("fetcher starting",
		slog.String("period", *month),
		slog.String("raw_dir", cfg.Paths.RawDir))

	client := fetch.NewClient(cfg.Sources, logger)
	st := store.NewStore(&cfg.Paths, logger)
	manager := operations.NewManager(client, st, &cfg.Paths, logger)

	if err := manager.Fetch(context.Background(), *month); err != nil {
		logger.Error("fetch failed",
			slog.String("period", *month),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("fetch complete", slog.String("period", *month))
}
