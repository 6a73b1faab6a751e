package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	TMDBAPIKey       string        `envconfig:"TMDB_API_KEY"`
	TMDBBaseURL      string        `envconfig:"TMDB_BASE_URL"       default:"https://api.themoviedb.org/3"`
	TMDBImageBaseURL string        `envconfig:"TMDB_IMAGE_BASE_URL" default:"https://image.tmdb.org/t/p"`
	CatalogTimeout   time.Duration `envconfig:"CATALOG_TIMEOUT"     default:"10s"`

	HTTPPort string `envconfig:"HTTP_PORT" default:":8080"`
	GrpcPort string `envconfig:"GRPC_PORT"` // empty disables the health server
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Env      string `envconfig:"ENV"       default:"development"`

	SessionSecret string `envconfig:"SESSION_SECRET" default:"movie-explorer-dev-secret-change-me"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"memory"`
	SQLitePath    string `envconfig:"SQLITE_PATH"    default:"data/movie-explorer.db"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDB       string `envconfig:"MONGO_DB"       default:"movie_explorer"`

	AuthSimulatedLatency time.Duration `envconfig:"AUTH_SIMULATED_LATENCY" default:"1s"`
	AuthVerifyPassword   bool          `envconfig:"AUTH_VERIFY_PASSWORD"   default:"false"`
	SearchDebounce       time.Duration `envconfig:"SEARCH_DEBOUNCE"        default:"500ms"`
}

// DevSessionSecret is the SESSION_SECRET default, refused in production.
const DevSessionSecret = "movie-explorer-dev-secret-change-me"

var (
	config Config
	once   sync.Once
	err    error
)

// LoadConfig reads an optional .env file and the environment once per
// process.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	once.Do(func() {
		loadErr := godotenv.Load()
		if loadErr != nil && !os.IsNotExist(loadErr) {
			logger.Warnf("Error loading .env file (but continuing): %v", loadErr)
		} else if loadErr == nil {
			logger.Info("Loaded configuration from .env file")
		}

		var cfg Config
		if err = Process(&cfg); err != nil {
			return
		}
		config = cfg
		logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s, Storage=%s",
			config.HTTPPort, config.GrpcPort, config.LogLevel, config.StorageDriver)
		if config.TMDBAPIKey == "" {
			logger.Warn("Configuration: TMDB_API_KEY is not set, catalog requests will fail")
		}
	})
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Process fills cfg from the environment and validates it.
func Process(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	if c.StorageDriver == "" {
		c.StorageDriver = "memory"
	}
	switch c.StorageDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("configuration error: DATABASE_URL is required for the postgres storage driver")
		}
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("configuration error: MONGO_URI is required for the mongo storage driver")
		}
	default:
		return fmt.Errorf("configuration error: unknown STORAGE_DRIVER '%s'", c.StorageDriver)
	}
	if c.AuthSimulatedLatency < 0 {
		return fmt.Errorf("configuration error: AUTH_SIMULATED_LATENCY cannot be negative")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("configuration error: SEARCH_DEBOUNCE cannot be negative")
	}
	if c.IsProduction() && (c.SessionSecret == "" || c.SessionSecret == DevSessionSecret) {
		return fmt.Errorf("configuration error: SESSION_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ProfileLatency is the shorter delay applied to profile updates.
func (c *Config) ProfileLatency() time.Duration {
	return c.AuthSimulatedLatency / 2
}
