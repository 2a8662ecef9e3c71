package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	GRPC      GRPCConfig
	Worker    WorkerConfig
	Sources   SourcesConfig
	Routing   RoutingConfig
	Replan    ReplanConfig
	Redis     RedisConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
}

type GRPCConfig struct {
	Port int
}

type ServerConfig struct {
	Host          string
	Port          int
	AllowOrigins  []string
	ShutdownGrace time.Duration
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type SourcesConfig struct {
	GDACSEnabled      bool
	GDACSURL          string
	GDACSPollInterval time.Duration
}

// Provider names accepted by ROUTING_PROVIDER.
const (
	ProviderORS    = "ORS"
	ProviderGoogle = "GOOGLE"
	ProviderMapbox = "MAPBOX"
)

type RoutingConfig struct {
	Provider string // one active provider per process

	ORSAPIKey         string
	ORSURL            string
	GoogleMapsAPIKey  string
	GoogleURL         string
	MapboxAccessToken string
	MapboxURL         string

	Timeout     time.Duration // per outbound directions call
	Concurrency int           // parallel lookups within one evacuation run
}

type ReplanConfig struct {
	Interval time.Duration // 0 disables the periodic run
}

type RedisConfig struct {
	URL     string // empty keeps event fan-out in-process
	Channel string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver string
	Path   string // sqlite file
	URL    string // postgres DSN
}

type LoggingConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	RPS int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "localhost"),
			Port:          getEnvInt("SERVER_PORT", 8080),
			AllowOrigins:  getEnvList("CLIENT_ORIGINS", []string{"*"}),
			ShutdownGrace: getEnvDuration("SHUTDOWN_GRACE", 10*time.Second),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Sources: SourcesConfig{
			GDACSEnabled:      getEnvBool("GDACS_ENABLED", false),
			GDACSURL:          getEnv("GDACS_URL", "https://www.gdacs.org/xml/rss.xml"),
			GDACSPollInterval: getEnvDuration("GDACS_POLL_INTERVAL", 10*time.Minute),
		},
		Routing: RoutingConfig{
			Provider:          strings.ToUpper(getEnv("ROUTING_PROVIDER", ProviderORS)),
			ORSAPIKey:         getEnv("ORS_API_KEY", ""),
			ORSURL:            getEnv("ORS_URL", "https://api.openrouteservice.org"),
			GoogleMapsAPIKey:  getEnv("GOOGLE_MAPS_API_KEY", ""),
			GoogleURL:         getEnv("GOOGLE_DIRECTIONS_URL", "https://maps.googleapis.com"),
			MapboxAccessToken: getEnv("MAPBOX_ACCESS_TOKEN", ""),
			MapboxURL:         getEnv("MAPBOX_URL", "https://api.mapbox.com"),
			Timeout:           getEnvDuration("ROUTING_TIMEOUT", 8*time.Second),
			Concurrency:       getEnvInt("ROUTING_CONCURRENCY", 3),
		},
		Replan: ReplanConfig{
			Interval: getEnvDuration("REPLAN_INTERVAL", 0),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			Channel: getEnv("REDIS_EVENTS_CHANNEL", "disaster-ops:events"),
		},
		DB: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			Path:   getEnv("DB_PATH", "./data/disaster-ops.db"),
			URL:    getEnv("DATABASE_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			RPS: getEnvInt("RATE_LIMIT_RPS", 20),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.GRPC.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	switch c.Routing.Provider {
	case ProviderORS, ProviderGoogle, ProviderMapbox:
	default:
		return fmt.Errorf("invalid routing provider: %s", c.Routing.Provider)
	}
	if c.Routing.Timeout < time.Second || c.Routing.Timeout > time.Minute {
		return fmt.Errorf("routing timeout must be between 1s and 1m, got %s", c.Routing.Timeout)
	}
	if c.Routing.Concurrency < 1 {
		return fmt.Errorf("routing concurrency must be at least 1")
	}

	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case DriverPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("invalid db driver: %s", c.DB.Driver)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if c.Sources.GDACSPollInterval < time.Minute {
		return fmt.Errorf("GDACS poll interval must be at least 1 minute")
	}
	if c.Replan.Interval != 0 && c.Replan.Interval < 10*time.Second {
		return fmt.Errorf("replan interval must be 0 or at least 10s")
	}
	if c.RateLimit.RPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s")
	}

	return nil
}

// APIKey returns the credential for the selected provider. Empty means every route call short-circuits.
func (r RoutingConfig) APIKey() string {
	switch r.Provider {
	case ProviderGoogle:
		return r.GoogleMapsAPIKey
	case ProviderMapbox:
		return r.MapboxAccessToken
	default:
		return r.ORSAPIKey
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
