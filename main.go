package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/ekaya-inc/ekaya-migrate/pkg/adapters/fileparser/csvfile"
	_ "github.com/ekaya-inc/ekaya-migrate/pkg/adapters/fileparser/excel"
	"github.com/ekaya-inc/ekaya-migrate/pkg/config"
	"github.com/ekaya-inc/ekaya-migrate/pkg/handlers"
	"github.com/ekaya-inc/ekaya-migrate/pkg/logging"
	"github.com/ekaya-inc/ekaya-migrate/pkg/middleware"
	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
	"github.com/ekaya-inc/ekaya-migrate/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Log startup configuration
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("key_policy", string(cfg.Profiler.KeyPolicy)),
		zap.Int64("upload_max_bytes", cfg.Upload.MaxBytes),
		zap.String("sample_path", cfg.Sample.Path),
		zap.String("rules_path", cfg.Validation.RulesPath))

	if !cfg.IsLocal() && cfg.TLSCertPath == "" {
		logger.Warn("Serving plain HTTP outside the local environment; set tls_cert_path and tls_key_path to enable HTTPS")
	}

	profilerService := services.NewProfilerService(cfg.Profiler.KeyPolicy, logger)
	mappingService := services.NewMappingService(logger)

	var rules []models.ValidationRule
	if cfg.Validation.RulesPath != "" {
		rules, err = services.NewValidationService(nil, logger).LoadRules(cfg.Validation.RulesPath)
		if err != nil {
			logger.Fatal("Failed to load validation rules", zap.Error(err))
		}
	}
	validationService := services.NewValidationService(rules, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDatasetsHandler(profilerService, mappingService, cfg.Upload.MaxBytes, cfg.Sample.Path, logger).RegisterRoutes(mux)
	handlers.NewValidationHandler(validationService, cfg.Upload.MaxBytes, logger).RegisterRoutes(mux)
	handlers.NewMappingsHandler(mappingService, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.RequestLogger(logger.Named("http"))(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting ekaya-migrate",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))

		var err error
		if cfg.TLSCertPath != "" {
			err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
