package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"behavior-backend/internal/analyzer"
	"behavior-backend/internal/apikey"
	"behavior-backend/internal/config"
	"behavior-backend/internal/handlers"
	"behavior-backend/internal/services"
)

func main() {
	httpPort := flag.String("http-port", "", "HTTP port (overrides PORT)")
	analyzerURL := flag.String("analyzer-url", "", "analysis engine URL (overrides ANALYZER_URL)")
	flag.Parse()

	cfg := config.LoadConfig()
	if *httpPort != "" {
		cfg.HTTPPort = *httpPort
	}
	if *analyzerURL != "" {
		cfg.AnalyzerURL = *analyzerURL
	}

	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      parseLogLevel(cfg.LogLevel),
			TimeFormat: "15:04:05",
		}),
	)

	logger.Info("starting behavior analysis backend",
		"http_port", cfg.HTTPPort,
		"analyzer_url", cfg.AnalyzerURL,
		"environment", cfg.Environment,
	)

	keys := apikey.New(cfg.PrimaryAPIKey, cfg.FallbackAPIKeys, logger)
	if cfg.DebugKeyLogging {
		keys.EnableDebugLogging()
		logger.Warn("API key debug logging is enabled; key prefixes will appear in logs")
	}

	engine := analyzer.NewClient(cfg.AnalyzerURL, time.Duration(cfg.AnalyzerTimeoutSec)*time.Second, logger)
	if !engine.Ready() {
		logger.Warn("analysis engine not reachable at startup, continuing anyway", "url", cfg.AnalyzerURL)
	}

	metrics := services.NewMetrics()
	handler := handlers.New(keys, engine, metrics, logger, cfg.CORSOrigins, cfg.MaxUploadMB)

	port := strings.TrimPrefix(cfg.HTTPPort, ":")
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("HTTP server listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down HTTP server", "err", err)
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	handler.CloseWebSockets()
	logger.Info("goodbye")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
