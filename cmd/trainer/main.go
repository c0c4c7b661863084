package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aigoflow/training-service/internal/chat"
	"github.com/aigoflow/training-service/internal/config"
	"github.com/aigoflow/training-service/internal/repository"
	"github.com/aigoflow/training-service/internal/services"
	"github.com/aigoflow/training-service/internal/store"
	"github.com/aigoflow/training-service/internal/tokenizer"
	"github.com/aigoflow/training-service/internal/trainer"
	"github.com/aigoflow/training-service/pkg/client"
	"github.com/aigoflow/training-service/pkg/server"
)

func main() {
	var envFile = flag.String("env", "", "Optional .env file to load")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize database
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Log startup event
	db.Event("info", "startup", "Trainer starting", map[string]interface{}{
		"model_name": cfg.ModelName,
		"http_addr":  cfg.HTTPAddr,
		"db_path":    cfg.DBPath,
	})

	// Initialize repository
	datasetPath := filepath.Join(cfg.DataDir, "datasets")
	repo := repository.NewSQLiteRepository(db, datasetPath)

	// Chat template: custom per model dir, ChatML fallback
	template := chat.DefaultTemplate
	if custom, err := chat.LoadTemplate(filepath.Join(cfg.DataDir, "models", cfg.ModelName)); err != nil {
		slog.Warn("Template load failed, using default", "error", err)
	} else if custom != nil {
		template = *custom
	}

	// Token counter for sequence-length budgeting
	counter, err := tokenizer.NewCounter()
	if err != nil {
		db.Event("error", "tokenizer.failed", "Tokenizer initialization failed", map[string]interface{}{
			"error": err.Error(),
		})
		slog.Error("Failed to initialize tokenizer", "error", err)
		os.Exit(1)
	}

	// Backend client over NATS for sampling and optimizer steps
	backend, err := client.NewNATSClient(cfg.NatsURL, "trainer",
		client.WithSubjectPrefixes(cfg.SampleSubjectPrefix, cfg.StepSubjectPrefix),
		client.WithTimeouts(cfg.SampleTimeout, cfg.StepTimeout))
	if err != nil {
		db.Event("error", "backend.failed", "Backend client initialization failed", map[string]interface{}{
			"nats_url": cfg.NatsURL,
			"error":    err.Error(),
		})
		slog.Error("Failed to create backend client", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	// Initialize services
	tr := trainer.New(backend, repo, counter)
	trainingService := services.NewTrainingService(tr, repo, template, cfg)

	db.Event("info", "services.init", "Initializing services", map[string]interface{}{
		"http_addr": cfg.HTTPAddr,
		"nats_url":  cfg.NatsURL,
	})

	// Initialize NATS work queue service
	natsService, err := services.NewNATSService(cfg, trainingService)
	if err != nil {
		db.Event("error", "nats.failed", "NATS service initialization failed", map[string]interface{}{
			"nats_url": cfg.NatsURL,
			"error":    err.Error(),
		})
		slog.Error("Failed to create NATS service", "error", err)
		os.Exit(1)
	}

	// Health service for trainer discovery
	healthService := services.NewHealthService(natsService.GetConnection(), cfg, natsService.GetMonitoringService())

	// Start HTTP server
	httpServer := server.NewServer(cfg.HTTPAddr, trainingService, natsService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db.Event("info", "server.ready", "Trainer ready to accept runs", map[string]interface{}{
		"http_addr":  cfg.HTTPAddr,
		"model_name": cfg.ModelName,
		"nats_url":   cfg.NatsURL,
	})

	// Start all services
	go func() {
		if err := httpServer.Start(ctx); err != nil {
			db.Event("error", "http.failed", "HTTP server failed", map[string]interface{}{
				"error": err.Error(),
			})
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	go func() {
		if err := natsService.Start(ctx); err != nil {
			db.Event("error", "nats.failed", "NATS service failed", map[string]interface{}{
				"error": err.Error(),
			})
			slog.Error("NATS service failed", "error", err)
		}
	}()

	go func() {
		if err := healthService.Start(ctx); err != nil {
			db.Event("error", "health.failed", "Health service failed", map[string]interface{}{
				"error": err.Error(),
			})
			slog.Error("Health service failed", "error", err)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("Shutting down trainer")
}
