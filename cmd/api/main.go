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

	"github.com/kr1s57/urlsentinel/internal/adapter/controller/http/handlers"
	"github.com/kr1s57/urlsentinel/internal/adapter/controller/http/middleware"
	"github.com/kr1s57/urlsentinel/internal/adapter/external/threatintel"
	"github.com/kr1s57/urlsentinel/internal/adapter/ml"
	"github.com/kr1s57/urlsentinel/internal/config"
	"github.com/kr1s57/urlsentinel/internal/usecase/scan"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := config.SetupLogger(cfg)
	logger.Info("Starting URL Sentinel API",
		"env", cfg.App.Env,
		"port", cfg.App.Port,
	)

	// Threat intel aggregator
	aggregator := threatintel.New(threatintel.Config{
		SafeBrowsingKey: cfg.ThreatIntel.SafeBrowsingKey,
		VirusTotalKey:   cfg.ThreatIntel.VirusTotalKey,
		URLHausKey:      cfg.ThreatIntel.URLHausKey,
		Timeout:         cfg.ThreatIntel.Timeout,
	}, logger)

	// Optional classifier model. Missing artifact is not fatal: lexical
	// scoring and provider checks carry the verdict on their own.
	var classifier scan.Classifier
	classifierVersion := ""
	if cfg.ML.ModelPath != "" {
		model, err := ml.Load(cfg.ML.ModelPath)
		if err != nil {
			logger.Warn("Classifier model not loaded", "path", cfg.ML.ModelPath, "error", err)
		} else {
			classifier = model
			classifierVersion = model.Version()
			logger.Info("Classifier model loaded", "path", cfg.ML.ModelPath, "version", classifierVersion)
		}
	}

	scanService := scan.NewService(aggregator, classifier, logger)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(httprate.LimitByIP(100, time.Minute))

	// Routes
	r.Get("/", handlers.Root())
	r.Get("/health", handlers.HealthCheck(cfg, aggregator, classifierVersion))
	r.Post("/scan", handlers.Scan(scanService))

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}
