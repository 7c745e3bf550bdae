package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/router"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/timeline"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/worker"
)

// EnvPrefix prefixes every environment override, e.g. HOSPITAL_DATABASE_HOST.
const EnvPrefix = "HOSPITAL"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" envconfig:"server"`
	Database    DatabaseConfig    `mapstructure:"database" envconfig:"database"`
	Storage     StorageConfig     `mapstructure:"storage" envconfig:"storage"`
	Redis       RedisConfig       `mapstructure:"redis" envconfig:"redis"`
	Outbox      OutboxConfig      `mapstructure:"outbox" envconfig:"outbox"`
	Workflow    WorkflowConfig    `mapstructure:"workflow" envconfig:"workflow"`
	Seed        SeedConfig        `mapstructure:"seed" envconfig:"seed"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit" envconfig:"rate_limit"`
	CORS        CORSConfig        `mapstructure:"cors" envconfig:"cors"`
	Log         LogConfig         `mapstructure:"log" envconfig:"log"`
	DoctorCache DoctorCacheConfig `mapstructure:"doctor_cache" envconfig:"doctor_cache"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" envconfig:"port"`
	Mode            string        `mapstructure:"mode" envconfig:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" envconfig:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" envconfig:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" envconfig:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" envconfig:"max_body_bytes"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes" envconfig:"max_header_bytes"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" envconfig:"host"`
	Port            int           `mapstructure:"port" envconfig:"port"`
	User            string        `mapstructure:"user" envconfig:"user"`
	Password        string        `mapstructure:"password" envconfig:"password"`
	Name            string        `mapstructure:"name" envconfig:"name"`
	SSLMode         string        `mapstructure:"sslmode" envconfig:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"conn_max_lifetime"`
}

// StorageConfig picks the store backend: "postgres" or "memory".
type StorageConfig struct {
	Driver string `mapstructure:"driver" envconfig:"driver"`
}

type RedisConfig struct {
	URL             string        `mapstructure:"url" envconfig:"url"`
	MaxRetries      int           `mapstructure:"max_retries" envconfig:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff" envconfig:"retry_backoff"`
	PoolSize        int           `mapstructure:"pool_size" envconfig:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns" envconfig:"min_idle_conns"`
	BreakerFailures int           `mapstructure:"breaker_failures" envconfig:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout" envconfig:"breaker_timeout"`
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size" envconfig:"batch_size"`
	PollInterval    time.Duration `mapstructure:"poll_interval" envconfig:"poll_interval"`
	RetryAttempts   int           `mapstructure:"retry_attempts" envconfig:"retry_attempts"`
	Channel         string        `mapstructure:"channel" envconfig:"channel"`
	Retention       time.Duration `mapstructure:"retention" envconfig:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" envconfig:"cleanup_interval"`
}

// WorkflowConfig.Atomic commits each entity change together with its
// timeline event. Off restores commit-then-append.
type WorkflowConfig struct {
	Atomic bool `mapstructure:"atomic" envconfig:"atomic"`
}

type SeedConfig struct {
	Enabled bool `mapstructure:"enabled" envconfig:"enabled"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" envconfig:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"requests_per_second"`
	Burst             int     `mapstructure:"burst" envconfig:"burst"`
}

type CORSConfig struct {
	AllowOrigins []string      `mapstructure:"allow_origins" envconfig:"allow_origins"`
	MaxAge       time.Duration `mapstructure:"max_age" envconfig:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" envconfig:"level"`
	Format string `mapstructure:"format" envconfig:"format"`
}

type DoctorCacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl" envconfig:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" envconfig:"cleanup_interval"`
	MaxAge          int           `mapstructure:"max_age" envconfig:"max_age"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.max_header_bytes", 1<<14)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "hospital")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("storage.driver", StoragePostgres)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.breaker_failures", 5)
	v.SetDefault("redis.breaker_timeout", 30*time.Second)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 2*time.Second)
	v.SetDefault("outbox.retry_attempts", 5)
	v.SetDefault("outbox.channel", "hospital.timeline")
	v.SetDefault("outbox.retention", 7*24*time.Hour)
	v.SetDefault("outbox.cleanup_interval", time.Hour)

	v.SetDefault("workflow.atomic", true)
	v.SetDefault("seed.enabled", true)

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.max_age", 12*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("doctor_cache.ttl", 30*time.Second)
	v.SetDefault("doctor_cache.cleanup_interval", time.Minute)
	v.SetDefault("doctor_cache.max_age", 60)
}

// LoadConfig reads config.yml from file, or from the usual search paths
// when file is empty, then applies HOSPITAL_* environment overrides. A
// missing config file is not an error; defaults apply.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs a positive rate and burst")
	}
	return nil
}

func (c *DatabaseConfig) ToPostgres() postgres.Config {
	return postgres.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Name:            c.Name,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:             c.URL,
		MaxRetries:      c.MaxRetries,
		RetryBackoff:    c.RetryBackoff,
		PoolSize:        c.PoolSize,
		MinIdleConns:    c.MinIdleConns,
		BreakerFailures: c.BreakerFailures,
		BreakerTimeout:  c.BreakerTimeout,
	}
}

func (c *OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		Channel:       c.Channel,
	}
}

func (c *LogConfig) ToLogger() logger.Config {
	return logger.Config{Level: c.Level, Format: c.Format}
}

func (c *DoctorCacheConfig) ToCacheConfig() doctor.CacheConfig {
	return doctor.CacheConfig{TTL: c.TTL, CleanupInterval: c.CleanupInterval}
}

func (c *WorkflowConfig) ToProjectorConfig() timeline.Config {
	return timeline.Config{Atomic: c.Atomic}
}

// RouterConfig gathers the HTTP middleware settings.
func (c *Config) RouterConfig() router.Config {
	return router.Config{
		Mode: c.Server.Mode,
		RateLimit: middleware.RateLimiterConfig{
			Enabled: c.RateLimit.Enabled,
			Rate:    rate.Limit(c.RateLimit.RequestsPerSecond),
			Burst:   c.RateLimit.Burst,
		},
		CORS: middleware.CORSConfig{
			AllowOrigins: c.CORS.AllowOrigins,
			MaxAge:       c.CORS.MaxAge,
		},
		SizeLimit: middleware.SizeLimitConfig{
			MaxBodySize:   c.Server.MaxBodyBytes,
			MaxHeaderSize: c.Server.MaxHeaderBytes,
		},
		DoctorCache: middleware.CacheConfig{
			MaxAge:               c.DoctorCache.MaxAge,
			Private:              true,
			StaleWhileRevalidate: c.DoctorCache.MaxAge / 2,
			Vary:                 []string{"Accept"},
		},
	}
}
