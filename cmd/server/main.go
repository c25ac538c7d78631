package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ncharlet/bibliart/internal/api"
	"github.com/ncharlet/bibliart/internal/config"
	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/quota"
	"github.com/ncharlet/bibliart/internal/services"
	"github.com/ncharlet/bibliart/internal/store"
	"github.com/ncharlet/bibliart/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("BibliArt Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("legacy_path=%s", cfg.LegacyPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("quota_bytes=%d", cfg.QuotaBytes)
	log.Debug("maintenance_worker_count=%d", cfg.MaintenanceWorkerCount)
	log.Debug("maintenance_queue_size=%d", cfg.MaintenanceQueueSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New(cfg.DBPath, cfg.LegacyPath, cfg.QuotaBytes)
	if err := st.Initialize(ctx); err != nil {
		log.Error("failed to initialize store: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing store")
		_ = st.Close()
	}()

	// A failed migration keeps the legacy file in place and retries next
	// startup; the server still comes up on whatever the backend holds.
	migrated, err := st.MigrateLegacy(ctx)
	if err != nil {
		log.Warn("legacy migration failed, keeping legacy file: %v", err)
	}
	if migrated {
		log.Info("legacy collection migrated")
	}

	monitor := quota.New(st.Usage, nil)

	catalogService := services.NewCatalogService(st, monitor)
	if err := catalogService.Load(ctx); err != nil {
		log.Error("failed to load catalog: %v", err)
		os.Exit(1)
	}
	monitor.Check(ctx)

	maintenancePool := worker.NewPool(cfg.MaintenanceWorkerCount, cfg.MaintenanceQueueSize)

	importService := services.NewImportService(catalogService, st)
	exportService := services.NewExportService(catalogService)
	maintenanceService := services.NewMaintenanceService(catalogService, maintenancePool)

	srv := &api.Server{
		Catalog:     catalogService,
		Imports:     importService,
		Exports:     exportService,
		Maintenance: maintenanceService,
		Store:       st,
		Monitor:     monitor,
	}

	maintenancePool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping maintenance pool")
	cancel()
	maintenancePool.Stop()

	log.Info("===========================================")
	log.Info("BibliArt Server Stopped")
	log.Info("===========================================")
}
