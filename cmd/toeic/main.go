package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"little-toeic/internal/cli"
	"little-toeic/internal/config"
	"little-toeic/internal/logger"
	"little-toeic/internal/problems"
	"little-toeic/internal/progress"
	"little-toeic/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	baseURL := flag.String("api", cfg.Problems.BaseURL, "problem API base URL")
	driver := flag.String("store", cfg.Store.Driver, "progress store driver (sqlite, redis, memory)")
	dbPath := flag.String("db", cfg.Store.SQLitePath, "SQLite file for progress")
	flag.Parse()

	cfg.Problems.BaseURL = *baseURL
	cfg.Store.Driver = *driver
	cfg.Store.SQLitePath = *dbPath
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open progress store: %w", err)
	}
	defer store.Close()

	location, err := cfg.Tracker.Location()
	if err != nil {
		return err
	}
	tracker := progress.NewTracker(store,
		progress.WithKey(cfg.Tracker.Key),
		progress.WithLocation(location),
		progress.WithLogger(log.Named("progress")),
	)
	client := problems.NewClient(cfg.Problems.BaseURL, &http.Client{Timeout: cfg.Problems.Timeout})

	log.Debug("client started",
		zap.String("api", client.BaseURL()),
		zap.String("store", cfg.Store.Driver),
	)

	err = cli.Run(ctx, os.Stdin, os.Stdout, client, tracker, cli.Config{
		MaxInvalidAnswers: cfg.CLI.MaxInvalidAnswers,
		Logger:            log.Named("cli"),
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
