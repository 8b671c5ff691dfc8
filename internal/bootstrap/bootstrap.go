package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/config"
	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/domain/repository"
	"github.com/routegrid-microservice/internal/infrastructure/overpass"
	"github.com/routegrid-microservice/internal/infrastructure/tileserver"
	"github.com/routegrid-microservice/internal/repository/cache"
	"github.com/routegrid-microservice/internal/repository/postgresosm"
	redisRepo "github.com/routegrid-microservice/internal/repository/redis"
	"github.com/routegrid-microservice/internal/usecase"
	"github.com/routegrid-microservice/internal/worker"
	"github.com/routegrid-microservice/internal/worker/grid"
)

// Dependencies - общие для api, worker и CLI подключения и use cases
type Dependencies struct {
	Redis *cache.Redis    // nil, если REDIS_ENABLED=false
	OSMDB *postgresosm.DB // nil, если LOOKUP_SOURCE=overpass

	CacheRepo repository.CacheRepository // nil без Redis
	Renderer  repository.MapImageRepository
	PointRepo repository.ConnectionPointRepository
	Table     *domain.ColorCostTable

	GridUC       *usecase.GridUseCase
	ConnectionUC *usecase.ConnectionUseCase
	PlanUC       *usecase.PlanUseCase
	TerrainUC    *usecase.TerrainUseCase

	logger *zap.Logger
}

// Build поднимает подключения и собирает use cases по конфигурации.
// При ошибке уже открытые подключения закрываются.
func Build(cfg *config.Config, log *zap.Logger) (deps *Dependencies, err error) {
	deps = &Dependencies{logger: log}
	defer func() {
		if err != nil {
			deps.Close()
			deps = nil
		}
	}()

	// Redis (кеш тайлов и сеток, стримы)
	if cfg.Redis.Enabled {
		deps.Redis, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			return deps, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.CacheRepo = cache.NewCacheRepository(deps.Redis)
	}

	// Источник точек подключения
	switch cfg.Lookup.Source {
	case config.LookupSourceOSMDB:
		deps.OSMDB, err = postgresosm.New(cfg, log)
		if err != nil {
			return deps, fmt.Errorf("failed to connect to OSM PostgreSQL: %w", err)
		}
		deps.PointRepo = postgresosm.NewConnectionPointRepository(deps.OSMDB)
	default:
		deps.PointRepo = overpass.NewOverpassClient(&cfg.Overpass, cfg.Tiles.UserAgent, log)
	}

	// Таблица цветов
	deps.Table, err = config.LoadColorTable(cfg.Grid.CostTableFile, domain.DefaultColorCostTable())
	if err != nil {
		return deps, err
	}

	deps.Renderer = tileserver.NewTileClient(&cfg.Tiles, deps.CacheRepo, cfg.Cache.TilesCacheTTL, log)

	deps.GridUC = usecase.NewGridUseCase(
		deps.Renderer,
		deps.CacheRepo,
		deps.Table,
		cfg.GridOptions(),
		log,
		cfg.Cache.GridCacheTTL,
	)
	deps.ConnectionUC = usecase.NewConnectionUseCase(deps.PointRepo, cfg.LookupOptions(), log)
	deps.PlanUC = usecase.NewPlanUseCase(deps.GridUC, deps.ConnectionUC, log)
	deps.TerrainUC = usecase.NewTerrainUseCase(deps.Table)

	log.Info("Dependencies initialized",
		zap.String("lookup_source", cfg.Lookup.Source),
		zap.Bool("redis", deps.Redis != nil),
		zap.Int("colors", deps.Table.Len()),
	)

	return deps, nil
}

// WorkerSettings - параметры чтения stream:grid:build из конфигурации
func WorkerSettings(cfg *config.Config) worker.Settings {
	return worker.Settings{
		Stream:        domain.StreamGridBuild,
		ConsumerGroup: cfg.Worker.ConsumerGroup,
		BatchSize:     cfg.Worker.BatchSize,
		MaxRetries:    cfg.Worker.MaxRetries,
		RetryBackoff:  cfg.Worker.RetryBackoff,
		MaxFailures:   cfg.Worker.MaxFailures,
	}
}

// GridWorker собирает воркер построения сеток поверх Redis Streams
func (d *Dependencies) GridWorker(cfg *config.Config) (*grid.GridBuildWorker, error) {
	if d.Redis == nil {
		return nil, fmt.Errorf("grid worker requires REDIS_ENABLED=true")
	}

	streamRepo := redisRepo.NewStreamRepository(d.Redis.Client(), cfg.Worker.StreamReadTimeout, d.logger)
	return grid.NewGridBuildWorker(
		streamRepo,
		d.PlanUC,
		cfg.GridOptions(),
		cfg.LookupOptions(),
		WorkerSettings(cfg),
		d.logger,
	), nil
}

// HealthChecks - проверки подключений для /health
func (d *Dependencies) HealthChecks() map[string]func(ctx context.Context) error {
	checks := make(map[string]func(ctx context.Context) error)
	if d.Redis != nil {
		checks["redis"] = d.Redis.Health
	}
	if d.OSMDB != nil {
		checks["osm_db"] = d.OSMDB.Health
	}
	return checks
}

// Close закрывает подключения
func (d *Dependencies) Close() {
	if d.OSMDB != nil {
		if err := d.OSMDB.Close(); err != nil {
			d.logger.Error("Failed to close OSM database", zap.Error(err))
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.logger.Error("Failed to close Redis", zap.Error(err))
		}
	}
}
