package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pdf-workbench/internal/bridge"
	"pdf-workbench/internal/database"
	"pdf-workbench/internal/handlers"
	"pdf-workbench/internal/logging"
	"pdf-workbench/internal/media"
	"pdf-workbench/internal/middleware"
	"pdf-workbench/internal/processor"
	"pdf-workbench/internal/startup"
	"pdf-workbench/internal/thumbcache"
)

func main() {
	start := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("configuration failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("database initialization failed: %v", err)
	}

	cache := thumbcache.New(config.CacheMaxBytes, config.CacheTTL)
	mediaService := media.NewService(media.NewGenerator(), cache)
	procBridge := bridge.New(processor.New())

	h := handlers.New(db, mediaService, procBridge, config)
	router := h.Router()

	if config.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	startup.LogHTTPRoutes(router)

	var handler http.Handler = router
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.Logger(middleware.LoggingConfig{LogHealthChecks: config.LogHealthChecks})(handler)

	server := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// No blanket write timeout: merges of large documents and SSE
		// progress streams legitimately outlive a short deadline.
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	startup.LogServerStarted(config.Port, time.Since(start).Round(time.Millisecond))

	select {
	case err := <-errCh:
		startup.LogFatal("server failed: %v", err)
	case <-ctx.Done():
	}

	logging.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("server shutdown failed: %v", err)
	}

	procBridge.Close()

	if err := db.Close(); err != nil {
		logging.Error("database close failed: %v", err)
	}

	logging.Info("shutdown complete")
}
