// Package config loads runtime settings from defaults, an optional config
// file, an optional .env file and MLMATHR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable. Nested keys use
// underscores, so sync.debounce is read from MLMATHR_SYNC_DEBOUNCE.
const EnvPrefix = "MLMATHR"

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	// DB is the SQLite database path. Empty means the default data dir.
	DB string `mapstructure:"db"`

	Log        LogConfig        `mapstructure:"log"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Local      LocalConfig      `mapstructure:"local"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Remote     RemoteConfig     `mapstructure:"remote"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Curriculum CurriculumConfig `mapstructure:"curriculum"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// SyncConfig tunes the sync engine.
type SyncConfig struct {
	Debounce    time.Duration `mapstructure:"debounce" validate:"gt=0"`
	SaveTimeout time.Duration `mapstructure:"save_timeout" validate:"gt=0"`
	MirrorLocal bool          `mapstructure:"mirror_local"`
	Retry       RetryConfig   `mapstructure:"retry"`
}

// RetryConfig configures retries of transient remote failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	InitialWait time.Duration `mapstructure:"initial_wait" validate:"gte=0"`
	MaxWait     time.Duration `mapstructure:"max_wait" validate:"gte=0"`
	Multiplier  float64       `mapstructure:"multiplier" validate:"gte=1"`
}

// LocalConfig selects the device-local key-value backend.
type LocalConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=sqlite redis"`
}

// RedisConfig is used when the local backend is redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix"`
}

// RemoteConfig selects the account progress backend.
type RemoteConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=sqlite postgres"`
}

// PostgresConfig is used when the remote backend is postgres.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns" validate:"gte=0"`
}

// CurriculumConfig points at an optional curriculum override file.
type CurriculumConfig struct {
	Path string `mapstructure:"path"`
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file. Any format viper understands.
	File string

	// EnvFile is an explicit .env file. When empty, ".env" in the working
	// directory is read if it exists. os.DevNull disables it.
	EnvFile string

	// Overrides take precedence over every other source, typically
	// command-line flags.
	Overrides map[string]any
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetDefault("sync.debounce", time.Second)
	v.SetDefault("sync.save_timeout", 10*time.Second)
	v.SetDefault("sync.mirror_local", true)
	v.SetDefault("sync.retry.max_attempts", 3)
	v.SetDefault("sync.retry.initial_wait", 250*time.Millisecond)
	v.SetDefault("sync.retry.max_wait", 5*time.Second)
	v.SetDefault("sync.retry.multiplier", 2.0)

	v.SetDefault("local.backend", BackendSQLite)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "mlmathr:")

	v.SetDefault("remote.backend", BackendSQLite)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 4)

	v.SetDefault("curriculum.path", "")
}

// Default returns the built-in configuration, ignoring the environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: decode defaults: %v", err))
	}
	return cfg
}

// Load reads configuration from all sources and validates it.
func Load(opts Options) (Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	}

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Local.Backend = strings.ToLower(strings.TrimSpace(cfg.Local.Backend))
	cfg.Remote.Backend = strings.ToLower(strings.TrimSpace(cfg.Remote.Backend))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadEnvFile populates the process environment from a .env file.
// Variables already set are not overridden.
func loadEnvFile(path string) error {
	if path == os.DevNull {
		return nil
	}
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
