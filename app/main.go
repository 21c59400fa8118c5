package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bundletrack/app/api"
	"bundletrack/app/cfg"
	"bundletrack/app/config"
	"bundletrack/app/feed"
	"bundletrack/app/snapshot"
	"bundletrack/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	store := snapshot.NewStore(appCfg.SnapshotFile)

	if appCfg.Serve {
		if err := serve(appCfg, store); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(appCfg, store); err != nil {
		slog.Error("Run failed, prior snapshot left untouched", "error", err)
		os.Exit(1)
	}
}

// run executes one batch invocation of the pipeline. A configuration error is
// fatal before any fetch; a snapshot write error is fatal after them. Both
// leave the previously published snapshot in place.
func run(appCfg *cfg.Cfg, store *snapshot.Store) error {
	bundles, err := config.Load(appCfg.BundlesFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	slog.Info("Loaded bundle configuration", "file", appCfg.BundlesFile, "bundles", len(bundles))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout := time.Duration(appCfg.FetchTimeout) * time.Second
	httpClient := &http.Client{Timeout: timeout}

	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent, timeout, appCfg.MaxItemsPerQuery,
		appCfg.LocaleHL, appCfg.LocaleGL, appCfg.LocaleCEID)

	var enricher tasks.ItemEnricher
	if appCfg.EnrichLimit > 0 {
		enricher = feed.NewEnricher(httpClient, appCfg.UserAgent, appCfg.EnrichLimit)
	}

	runner := tasks.NewRunner(bundles, fetcher, enricher, store,
		appCfg.WorkerCount, appCfg.RetentionDays, appCfg.MaxTotalItems)

	return runner.Run(ctx)
}

// serve exposes the published snapshot read-only for the browsing UI.
func serve(appCfg *cfg.Cfg, store *snapshot.Store) error {
	handler := api.NewHandler(store, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "snapshot", store.Path())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
