package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	OSMDB    DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Grid     GridConfig
	Tiles    TilesConfig
	Lookup   LookupConfig
	Overpass OverpassConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
	// CORSOrigins - список через запятую или "*"
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        int
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

type CacheConfig struct {
	TilesCacheTTL time.Duration
	GridCacheTTL  time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	BatchSize         int
	MaxRetries        int
	RetryBackoff      time.Duration
	// MaxFailures - неудачных чтений подряд до статуса degraded в /health
	MaxFailures int
}

// GridConfig - параметры построения сетки стоимостей
type GridConfig struct {
	ZoomLevel       int
	CellSizeMeters  float64
	DefaultCost     float64
	InfeasibleShare float64
	CostTableFile   string
}

// TilesConfig - тайловый сервер для рендеринга карты
type TilesConfig struct {
	URLTemplate    string
	UserAgent      string
	RequestTimeout time.Duration
	MaxTiles       int
}

// LookupConfig - поиск ближайшей опоры/подстанции
type LookupConfig struct {
	Source        string
	InitialRadius float64
	MaxRadius     float64
	RadiusStep    float64
}

type OverpassConfig struct {
	URL            string
	RequestTimeout time.Duration
}

const (
	LookupSourceOverpass = "overpass"
	LookupSourceOSMDB    = "osmdb"
)

func Load() (*Config, error) {
	viper.SetConfigFile(envFile())
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),

			CORSOrigins: viper.GetString("CORS_ALLOWED_ORIGINS"),
		},
		OSMDB: DatabaseConfig{
			Host:            viper.GetString("OSM_DB_HOST"),
			Port:            viper.GetInt("OSM_DB_PORT"),
			User:            viper.GetString("OSM_DB_USER"),
			Password:        viper.GetString("OSM_DB_PASSWORD"),
			DBName:          viper.GetString("OSM_DB_NAME"),
			SSLMode:         viper.GetString("OSM_DB_SSLMODE"),
			MaxConns:        viper.GetInt("OSM_DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("OSM_DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("OSM_DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("OSM_DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),

			PoolSize:    viper.GetInt("REDIS_POOL_SIZE"),
			DialTimeout: time.Duration(viper.GetInt("REDIS_DIAL_TIMEOUT")) * time.Second,
		},
		Cache: CacheConfig{
			TilesCacheTTL: time.Duration(viper.GetInt("TILES_CACHE_TTL")) * time.Second,
			GridCacheTTL:  time.Duration(viper.GetInt("GRID_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			BatchSize:         viper.GetInt("WORKER_BATCH_SIZE"),
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
			RetryBackoff:      time.Duration(viper.GetInt("WORKER_RETRY_BACKOFF")) * time.Millisecond,
			MaxFailures:       viper.GetInt("WORKER_MAX_FAILURES"),
		},
		Grid: GridConfig{
			ZoomLevel:       viper.GetInt("GRID_ZOOM_LEVEL"),
			CellSizeMeters:  viper.GetFloat64("GRID_CELL_SIZE_METERS"),
			DefaultCost:     viper.GetFloat64("GRID_DEFAULT_COST"),
			InfeasibleShare: viper.GetFloat64("GRID_INFEASIBLE_SHARE"),
			CostTableFile:   viper.GetString("COST_TABLE_FILE"),
		},
		Tiles: TilesConfig{
			URLTemplate:    viper.GetString("TILES_URL_TEMPLATE"),
			UserAgent:      viper.GetString("TILES_USER_AGENT"),
			RequestTimeout: time.Duration(viper.GetInt("TILES_REQUEST_TIMEOUT")) * time.Second,
			MaxTiles:       viper.GetInt("TILES_MAX_TILES"),
		},
		Lookup: LookupConfig{
			Source:        strings.ToLower(viper.GetString("LOOKUP_SOURCE")),
			InitialRadius: viper.GetFloat64("LOOKUP_INITIAL_RADIUS"),
			MaxRadius:     viper.GetFloat64("LOOKUP_MAX_RADIUS"),
			RadiusStep:    viper.GetFloat64("LOOKUP_RADIUS_STEP"),
		},
		Overpass: OverpassConfig{
			URL:            viper.GetString("OVERPASS_URL"),
			RequestTimeout: time.Duration(viper.GetInt("OVERPASS_REQUEST_TIMEOUT")) * time.Second,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envFile() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	return ".env"
}

func setDefaults() {
	viper.SetDefault("API_HOST", "0.0.0.0")
	viper.SetDefault("API_PORT", 8080)
	viper.SetDefault("API_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.SetDefault("OSM_DB_PORT", 5432)
	viper.SetDefault("OSM_DB_SSLMODE", "disable")
	viper.SetDefault("OSM_DB_MAX_CONNS", 10)
	viper.SetDefault("OSM_DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("OSM_DB_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("OSM_DB_CONN_MAX_IDLE_TIME", 60)

	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_POOL_SIZE", 20)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5)

	viper.SetDefault("TILES_CACHE_TTL", 7*24*3600)
	viper.SetDefault("GRID_CACHE_TTL", 3600)

	viper.SetDefault("WORKER_CONSUMER_GROUP", "grid-build-workers")
	viper.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	viper.SetDefault("WORKER_BATCH_SIZE", 5)
	viper.SetDefault("WORKER_MAX_RETRIES", 3)
	viper.SetDefault("WORKER_RETRY_BACKOFF", 1000)
	viper.SetDefault("WORKER_MAX_FAILURES", 3)

	viper.SetDefault("GRID_ZOOM_LEVEL", 16)
	viper.SetDefault("GRID_CELL_SIZE_METERS", 38)
	viper.SetDefault("GRID_DEFAULT_COST", 1.59)
	viper.SetDefault("GRID_INFEASIBLE_SHARE", 0)

	viper.SetDefault("TILES_URL_TEMPLATE", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	viper.SetDefault("TILES_USER_AGENT", "routegrid/1.0")
	viper.SetDefault("TILES_REQUEST_TIMEOUT", 30)
	viper.SetDefault("TILES_MAX_TILES", 64)

	viper.SetDefault("LOOKUP_SOURCE", LookupSourceOverpass)
	viper.SetDefault("LOOKUP_INITIAL_RADIUS", 5000)
	viper.SetDefault("LOOKUP_MAX_RADIUS", 50000)
	viper.SetDefault("LOOKUP_RADIUS_STEP", 5000)

	viper.SetDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter")
	viper.SetDefault("OVERPASS_REQUEST_TIMEOUT", 60)
}

func (c *Config) validate() error {
	if c.Grid.ZoomLevel < 0 || c.Grid.ZoomLevel > 19 {
		return fmt.Errorf("GRID_ZOOM_LEVEL must be between 0 and 19, got %d", c.Grid.ZoomLevel)
	}
	if c.Grid.CellSizeMeters <= 0 {
		return fmt.Errorf("GRID_CELL_SIZE_METERS must be positive, got %v", c.Grid.CellSizeMeters)
	}
	if c.Grid.InfeasibleShare < 0 || c.Grid.InfeasibleShare >= 1 {
		return fmt.Errorf("GRID_INFEASIBLE_SHARE must be in [0, 1), got %v", c.Grid.InfeasibleShare)
	}
	if c.Worker.BatchSize <= 0 || c.Worker.MaxRetries < 0 {
		return fmt.Errorf("invalid worker settings: batch=%d retries=%d", c.Worker.BatchSize, c.Worker.MaxRetries)
	}
	if c.Lookup.InitialRadius <= 0 || c.Lookup.RadiusStep <= 0 || c.Lookup.MaxRadius < c.Lookup.InitialRadius {
		return fmt.Errorf("invalid lookup radii: initial=%v step=%v max=%v",
			c.Lookup.InitialRadius, c.Lookup.RadiusStep, c.Lookup.MaxRadius)
	}
	switch c.Lookup.Source {
	case LookupSourceOverpass, LookupSourceOSMDB:
	default:
		return fmt.Errorf("LOOKUP_SOURCE must be %q or %q, got %q", LookupSourceOverpass, LookupSourceOSMDB, c.Lookup.Source)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.OSMDB.Host,
		c.OSMDB.Port,
		c.OSMDB.User,
		c.OSMDB.Password,
		c.OSMDB.DBName,
		c.OSMDB.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
