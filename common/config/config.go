// Package config provides centralized configuration management for the
// vigilo client library and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the master configuration struct for the client and CLI.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Poll    PollConfig    `mapstructure:"poll"`
	Camera  CameraConfig  `mapstructure:"camera"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds the vendor GraphQL endpoint settings.
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig holds session token lifetime and persistence settings.
//
// The upstream service invalidates hash tokens well before any documented
// expiry; 360s is the conservative window. See DESIGN.md for the known
// 360s/43200s discrepancy — the TTL is deliberately configurable.
type SessionConfig struct {
	TTL  time.Duration `mapstructure:"ttl"`
	Dir  string        `mapstructure:"dir"`
	Lang string        `mapstructure:"lang"`
}

// CacheConfig holds installation-cache settings.
type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	Backend string        `mapstructure:"backend"` // "memory" (default) or "redis"
}

// RedisConfig holds Redis settings for the optional redis cache backend.
type RedisConfig struct {
	URL        string `mapstructure:"url"`
	MaxRetries int    `mapstructure:"max_retries"`
	PoolSize   int    `mapstructure:"pool_size"`
}

// PollConfig holds the alarm command polling parameters.
type PollConfig struct {
	MaxAttempts       int           `mapstructure:"max_attempts"`
	Interval          time.Duration `mapstructure:"interval"`
	StatusMaxAttempts int           `mapstructure:"status_max_attempts"`
}

// CameraConfig holds the camera image-request polling parameters.
type CameraConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Interval    time.Duration `mapstructure:"interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from $VIGILO_CONFIG_DIR/config.yaml and
// environment variables. A missing config file is not an error; defaults
// and environment overrides still apply.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	configDir := os.Getenv("VIGILO_CONFIG_DIR")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			configDir = filepath.Join(home, ".vigilo")
		}
	}

	if configDir != "" {
		v.SetConfigFile(filepath.Join(configDir, "config.yaml"))
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("VIGILO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found - continue with defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration defaults without touching disk.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "https://customers.securitasdirect.es/owa-api/graphql")
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("session.ttl", "360s")
	v.SetDefault("session.dir", "")
	v.SetDefault("session.lang", "es")

	v.SetDefault("cache.ttl", "540s")
	v.SetDefault("cache.backend", "memory")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("poll.max_attempts", 30)
	v.SetDefault("poll.interval", "5s")
	v.SetDefault("poll.status_max_attempts", 10)

	v.SetDefault("camera.max_attempts", 30)
	v.SetDefault("camera.interval", "4s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}
