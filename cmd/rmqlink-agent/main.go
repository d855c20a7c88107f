package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/rmqlink/internal/api"
	"github.com/shaiso/rmqlink/internal/broker"
	"github.com/shaiso/rmqlink/internal/config"
	"github.com/shaiso/rmqlink/internal/telemetry"
)

var startTime = time.Now()

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting rmqlink-agent")

	cfg, err := config.Load(os.Getenv("RMQLINK_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	manager, err := broker.FromConfig(cfg, nil, logger)
	if err != nil {
		logger.Error("failed to load endpoints", "error", err)
		os.Exit(1)
	}
	defer manager.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Недоступные брокеры не мешают старту: их можно подключить через API.
	if err := manager.ConnectAll(ctx); err != nil {
		logger.Warn("some endpoints are not connected", "error", err)
	}

	handler := api.NewHandler(api.Config{
		Manager: manager,
		Logger:  logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		telemetry.ObserveHTTPRequest(r.Method, "200")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.Server.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
