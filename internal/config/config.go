// Package config loads settings from config.yml and the environment.
// Environment variables use the DENTALCARE prefix and win over the file,
// for example DENTALCARE_STORAGE_DRIVER or DENTALCARE_AUTH_JWT_SECRET.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/dentalcare/internal/kv"
)

const envPrefix = "DENTALCARE"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   kv.Config       `mapstructure:"storage"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Clinic    ClinicConfig    `mapstructure:"clinic"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" split_words:"true"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" split_words:"true"`
	AllowOrigins    []string      `mapstructure:"allow_origins" split_words:"true"`
}

// BrokerConfig selects where change events are published. "memory" keeps
// them inside the process; "redis" shares them between processes.
type BrokerConfig struct {
	Driver       string        `mapstructure:"driver"`
	RedisURL     string        `mapstructure:"redis_url" split_words:"true"`
	PoolSize     int           `mapstructure:"pool_size" split_words:"true"`
	MinIdleConns int           `mapstructure:"min_idle_conns" split_words:"true"`
	MaxRetries   int           `mapstructure:"max_retries" split_words:"true"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" split_words:"true"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret" envconfig:"JWT_SECRET"`
	TokenExpiry time.Duration `mapstructure:"token_expiry" split_words:"true"`
	BcryptCost  int           `mapstructure:"bcrypt_cost" split_words:"true"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" split_words:"true"`
	Burst             int     `mapstructure:"burst"`
}

type WorkerConfig struct {
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval" split_words:"true"`
	RunOnStart       bool          `mapstructure:"run_on_start" split_words:"true"`
}

type ClinicConfig struct {
	// Timezone is an IANA name; days and months are counted in it.
	Timezone string `mapstructure:"timezone"`
	// Seed writes the bundled data for every absent collection on startup.
	Seed bool `mapstructure:"seed"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("storage.driver", string(kv.DriverSQLite))
	v.SetDefault("storage.dsn", "dentalcare.db")
	v.SetDefault("storage.key_prefix", "dentalcare:")
	v.SetDefault("storage.pool_size", 10)
	v.SetDefault("storage.max_retries", 3)
	v.SetDefault("storage.retry_backoff", 100*time.Millisecond)

	v.SetDefault("broker.driver", "memory")
	v.SetDefault("broker.pool_size", 10)
	v.SetDefault("broker.max_retries", 3)
	v.SetDefault("broker.retry_backoff", 100*time.Millisecond)

	v.SetDefault("auth.token_expiry", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_second", 20.0)
	v.SetDefault("ratelimit.burst", 40)

	v.SetDefault("worker.snapshot_interval", 24*time.Hour)
	v.SetDefault("worker.run_on_start", true)

	v.SetDefault("clinic.timezone", "UTC")
	v.SetDefault("clinic.seed", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "dentalcare")
}

// Load reads config.yml from ".", "./config" or the extra paths, then
// applies environment overrides. A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case kv.DriverMemory, kv.DriverSQLite, kv.DriverPostgres:
	case kv.DriverRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Broker.Driver {
	case "memory":
	case "redis":
		if c.Broker.RedisURL == "" {
			return errors.New("broker.redis_url is required for the redis broker")
		}
	default:
		return fmt.Errorf("unknown broker driver %q", c.Broker.Driver)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid clinic.timezone: %w", err)
	}
	return nil
}

// Location resolves the clinic time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Clinic.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Clinic.Timezone)
}
