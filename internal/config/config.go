package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Ingestion IngestionConfig `mapstructure:"ingestion"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig addresses the data store's REST surface. URL is the base
// endpoint; ServiceKey is the privileged key sent with every request. Both
// are required and also authorize object-storage uploads.
type DatabaseConfig struct {
	URL        string        `mapstructure:"url"`
	ServiceKey string        `mapstructure:"service_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Bucket       string        `mapstructure:"bucket"`
	Public       bool          `mapstructure:"public"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type IngestionConfig struct {
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8086)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	// Registered empty so env overrides bind during Unmarshal; Validate
	// rejects them when still unset.
	v.SetDefault("database.url", "")
	v.SetDefault("database.service_key", "")
	v.SetDefault("database.timeout", "15s")
	v.SetDefault("storage.bucket", "client-assets")
	v.SetDefault("storage.public", true)
	v.SetDefault("storage.fetch_timeout", "30s")
	v.SetDefault("ingestion.max_body_size", 10485760)
	v.SetDefault("ingestion.rate_limit_enabled", false)
	v.SetDefault("ingestion.rate_limit_requests", 300)
	v.SetDefault("ingestion.rate_limit_window", "1m")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/intake")
	}

	// Environment variables override
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate fails fast on deployment configuration the service cannot run
// without, naming the first missing key.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("missing required config: database.url")
	}
	if c.Database.ServiceKey == "" {
		return fmt.Errorf("missing required config: database.service_key")
	}
	return nil
}
