package main

// @title Route Grid Microservice API
// @version 1.0.0
// @description Сетка стоимостей прокладки кабеля от электростанции до ближайшей опоры ЛЭП или подстанции по растровой карте OpenStreetMap.
// @description
// @description Основные возможности:
// @description - Построение сетки стоимостей между двумя точками
// @description - Поиск ближайшей опоры ЛЭП или подстанции
// @description - Таблица цветов местности и множителей стоимости

// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/bootstrap"
	"github.com/routegrid-microservice/internal/config"
	httpDelivery "github.com/routegrid-microservice/internal/delivery/http"
	"github.com/routegrid-microservice/internal/delivery/http/handler"
	"github.com/routegrid-microservice/internal/pkg/logger"
	"github.com/routegrid-microservice/internal/worker"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Route Grid Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("lookup_source", cfg.Lookup.Source),
		zap.String("tiles", cfg.Tiles.URLTemplate),
	)

	// 3. Connections, repositories, use cases
	deps, err := bootstrap.Build(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	// 4. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	healthChecks := make(map[string]httpDelivery.HealthCheck)
	for name, check := range deps.HealthChecks() {
		if err := check(ctx); err != nil {
			log.Fatal("Health check failed", zap.String("dependency", name), zap.Error(err))
		}
		healthChecks[name] = check
	}

	log.Info("All connections healthy")

	// 5. Optional in-process grid worker, reported in /health
	var workerManager *worker.WorkerManager
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if cfg.Worker.Enabled {
		gridWorker, err := deps.GridWorker(cfg)
		if err != nil {
			log.Fatal("Failed to initialize grid worker", zap.Error(err))
		}

		workerManager = worker.NewWorkerManager(log)
		workerManager.Register(gridWorker)

		if err := workerManager.Start(workerCtx); err != nil {
			log.Fatal("Failed to start workers", zap.Error(err))
		}
		healthChecks["workers"] = workerManager.Health
	}

	// 6. Initialize HTTP Handlers
	gridHandler := handler.NewGridHandler(deps.PlanUC, cfg.GridOptions(), cfg.LookupOptions(), log)
	connectionHandler := handler.NewConnectionHandler(deps.ConnectionUC, cfg.LookupOptions(), log)
	terrainHandler := handler.NewTerrainHandler(deps.TerrainUC)

	log.Info("HTTP handlers initialized")

	// 7. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		gridHandler,
		connectionHandler,
		terrainHandler,
		healthChecks,
	)

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
		zap.Bool("worker", workerManager != nil),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if workerManager != nil {
		workerCancel()
		if err := workerManager.Stop(); err != nil {
			log.Error("Error stopping workers", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}
