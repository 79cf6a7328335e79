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
	"time"

	"go.uber.org/zap"

	"little-toeic/internal/config"
	"little-toeic/internal/httpapi"
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

	addr := flag.String("addr", cfg.HTTP.Addr, "HTTP listen address")
	baseURL := flag.String("api", cfg.Problems.BaseURL, "problem API base URL")
	driver := flag.String("store", cfg.Store.Driver, "progress store driver (sqlite, redis, memory)")
	flag.Parse()

	cfg.HTTP.Addr = *addr
	cfg.Problems.BaseURL = *baseURL
	cfg.Store.Driver = *driver
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
	api := httpapi.NewAPI(client, tracker, log.Named("api"))

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewRouter(api, cfg.HTTP.AllowedOrigins, log.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("dashboard API listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("problems_api", client.BaseURL()),
			zap.String("store", cfg.Store.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
