package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"vesseltrack/internal/cache"
	"vesseltrack/internal/catalog"
	"vesseltrack/internal/config"
	"vesseltrack/internal/handler"
	"vesseltrack/internal/journey"
	"vesseltrack/internal/middleware"
	"vesseltrack/internal/replay"
	"vesseltrack/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting vesseltrack server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"redis_enabled", cfg.RedisEnabled,
	)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "ports", len(cat.Ports), "ships", len(cat.Fleet))

	datasetStore := store.New(cfg.DatasetStaleAfter)
	processor := journey.NewProcessor(cat, cfg.GapThreshold, cfg.PortZoneKm, logger)
	registry := replay.NewRegistry(logger)

	var resultCache *cache.RedisCache
	if cfg.RedisEnabled {
		resultCache, err = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			defer resultCache.Close()
		}
	}

	httpHandler := handler.NewHTTPHandler(datasetStore, processor, cat, resultCache, cfg.CacheTTL, cfg.MaxUploadBytes, logger)
	wsHandler := handler.NewWSHandler(registry, datasetStore, cfg.ReplayDefaultSpeed, cfg.ReplayMaxStep, logger)
	healthHandler := handler.NewHealthHandler(datasetStore)
	statsHandler := handler.NewStatsHandler(datasetStore, registry)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/datasets", httpHandler.CreateDataset)
	mux.HandleFunc("GET /v1/datasets", httpHandler.ListDatasets)
	mux.HandleFunc("GET /v1/datasets/{id}", httpHandler.GetDataset)
	mux.HandleFunc("GET /v1/datasets/{id}/journeys/{n}", httpHandler.GetJourney)
	mux.HandleFunc("DELETE /v1/datasets/{id}", httpHandler.DeleteDataset)

	mux.HandleFunc("GET /v1/ports", httpHandler.ListPorts)
	mux.HandleFunc("GET /v1/fleet", httpHandler.ListFleet)
	mux.HandleFunc("GET /v1/stats", statsHandler.GetStats)
	mux.HandleFunc("/v1/replay", wsHandler.ServeWS)

	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)

	rateLimiter := middleware.NewRateLimiter(
		cfg.RateLimitPerWindow,
		cfg.RateLimitWindow,
		cfg.RateLimitWhitelist,
		handler.ServerStats.IncRateLimitBlocked,
		logger,
	)

	root := handler.CORSMiddleware(handler.GzipMiddleware(rateLimiter.Middleware(mux)))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go registry.Run(ctx)
	go datasetStore.RunJanitor(ctx, cfg.DatasetPruneEvery, logger)

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
