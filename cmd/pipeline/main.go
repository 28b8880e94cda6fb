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
	month := flag.String("month", "", "period to process (YYYY-MM), required")
	withFetch := flag.Bool("fetch", false, "fetch raw data before processing")
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

	cfg.Logging.FilePath = cfg.Paths.LogPath("pipeline.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("pipeline starting",
		slog.String("period", *month),
		slog.Bool("with_fetch", *withFetch))

	client := fetch.NewClient(cfg.Sources, logger)
	st := store.NewStore(&cfg.Paths, logger)
	manager := operations.NewManager(client, st, &cfg.Paths, logger)

	ctx := context.Background()
	var runErr error
	if *withFetch {
		_, runErr = manager.Run(ctx, *month)
	} else {
		_, runErr = manager.Process(ctx, *month)
	}
	if runErr != nil {
		logger.Error("pipeline failed",
			slog.String("period", *month),
			slog.String("error", runErr.Error()))
		os.Exit(1)
	}

	logger.Info("pipeline complete",
		slog.String("period", *month),
		slog.String("output", st.MonthlyPath()))
}
