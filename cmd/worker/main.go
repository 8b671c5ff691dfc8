package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/bootstrap"
	"github.com/routegrid-microservice/internal/config"
	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/pkg/logger"
	"github.com/routegrid-microservice/internal/worker"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// Streams живут в Redis
	cfg.Redis.Enabled = true

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Grid Build Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Duration("stream_read_timeout", cfg.Worker.StreamReadTimeout),
		zap.String("lookup_source", cfg.Lookup.Source))

	// 3. Connections, repositories, use cases
	deps, err := bootstrap.Build(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	// 4. Initialize workers
	gridWorker, err := deps.GridWorker(cfg)
	if err != nil {
		log.Fatal("Failed to initialize grid worker", zap.Error(err))
	}

	if backlog, err := deps.Redis.StreamLength(context.Background(), domain.StreamGridBuild); err != nil {
		log.Warn("Failed to read build stream length", zap.Error(err))
	} else {
		log.Info("Build stream backlog", zap.String("stream", domain.StreamGridBuild), zap.Int64("events", backlog))
	}

	// 5. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(gridWorker)

	// 6. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start workers
	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Cancel context to stop workers
	cancel()

	// Stop worker manager
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
