package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Store    StoreConfig
	Exchange ExchangeConfig
	Search   SearchConfig
	Tracker  TrackerConfig
	Log      LogConfig
}

// ServerConfig holds the local dashboard server settings.
type ServerConfig struct {
	Host         string        `envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port         int           `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	TemplateDir  string        `envconfig:"TEMPLATE_DIR" default:"web/templates"`
	StaticDir    string        `envconfig:"STATIC_DIR" default:"web/static"`
}

// BackendConfig points at the tracker backend.
type BackendConfig struct {
	BaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:3001"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"0s"` // 0 waits forever
}

// StoreConfig selects where the session and the rate cache are persisted.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"sqlite"` // sqlite, postgres, redis or memory
	Path string `envconfig:"STORE_PATH" default:"./data/tracker.db"`
	// PostgreSQL settings
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBName     string `envconfig:"DB_NAME" default:"cs2_tracker"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	// Redis settings
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"cs2tracker"`
}

// ExchangeConfig holds the USD to INR rate provider settings.
type ExchangeConfig struct {
	URL          string  `envconfig:"EXCHANGE_RATE_URL" default:"https://api.exchangerate-api.com/v4/latest/USD"`
	Currency     string  `envconfig:"EXCHANGE_RATE_CURRENCY" default:"INR"`
	FallbackRate float64 `envconfig:"EXCHANGE_RATE_FALLBACK" default:"83"`
}

// SearchConfig holds catalog search settings.
type SearchConfig struct {
	Debounce time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"300ms"`
	Count    int           `envconfig:"SEARCH_COUNT" default:"50"`
}

// TrackerConfig holds watchlist settings.
type TrackerConfig struct {
	ImageConcurrency int    `envconfig:"IMAGE_CONCURRENCY" default:"8"`
	DefaultSort      string `envconfig:"DEFAULT_SORT" default:"date-newest"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level     string `envconfig:"LOG_LEVEL" default:"info"`
	Format    string `envconfig:"LOG_FORMAT" default:"text"`
	Output    string `envconfig:"LOG_FILE" default:"stderr"`
	MaxSizeMB int    `envconfig:"LOG_MAX_SIZE_MB" default:"10"`
	MaxAge    int    `envconfig:"LOG_MAX_AGE_DAYS" default:"7"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.DBUser, s.DBPassword, s.DBHost, s.DBPort, s.DBName, s.DBSSLMode)
}

// RedisAddress returns the Redis address in host:port format.
func (s *StoreConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

// Load reads configuration from a .env file, if present, and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Search.Count <= 0 {
		return nil, fmt.Errorf("SEARCH_COUNT must be positive, got %d", cfg.Search.Count)
	}
	if cfg.Tracker.ImageConcurrency <= 0 {
		return nil, fmt.Errorf("IMAGE_CONCURRENCY must be positive, got %d", cfg.Tracker.ImageConcurrency)
	}
	return &cfg, nil
}
