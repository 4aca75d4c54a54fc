package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile() Options { return Options{EnvFile: os.DevNull} }

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, time.Second, cfg.Sync.Debounce)
	assert.Equal(t, 10*time.Second, cfg.Sync.SaveTimeout)
	assert.True(t, cfg.Sync.MirrorLocal)
	assert.Equal(t, 3, cfg.Sync.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.Retry.InitialWait)
	assert.Equal(t, BackendSQLite, cfg.Local.Backend)
	assert.Equal(t, BackendSQLite, cfg.Remote.Backend)
	assert.Equal(t, "mlmathr:", cfg.Redis.Prefix)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MLMATHR_SYNC_DEBOUNCE", "250ms")
	t.Setenv("MLMATHR_SYNC_MIRROR_LOCAL", "false")
	t.Setenv("MLMATHR_LOG_LEVEL", "DEBUG")
	t.Setenv("MLMATHR_REDIS_DB", "3")

	cfg, err := Load(noEnvFile())
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.Debounce)
	assert.False(t, cfg.Sync.MirrorLocal)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlmathr.yaml")
	content := `
log:
  format: json
sync:
  debounce: 2s
  retry:
    max_attempts: 5
remote:
  backend: postgres
postgres:
  dsn: postgres://localhost/mlmathr
  max_conns: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(Options{File: path, EnvFile: os.DevNull})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2*time.Second, cfg.Sync.Debounce)
	assert.Equal(t, 5, cfg.Sync.Retry.MaxAttempts)
	assert.Equal(t, BackendPostgres, cfg.Remote.Backend)
	assert.Equal(t, "postgres://localhost/mlmathr", cfg.Postgres.DSN)
	assert.Equal(t, int32(8), cfg.Postgres.MaxConns)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.Sync.SaveTimeout)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yaml"), EnvFile: os.DevNull})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_OverridesWin(t *testing.T) {
	t.Setenv("MLMATHR_DB", "/from/env.db")

	opts := noEnvFile()
	opts.Overrides = map[string]any{"db": "/from/flag.db", "log.level": "error"}
	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "/from/flag.db", cfg.DB)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MLMATHR_REDIS_PREFIX=fromdotenv:\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MLMATHR_REDIS_PREFIX") })

	cfg, err := Load(Options{EnvFile: path})
	require.NoError(t, err)
	assert.Equal(t, "fromdotenv:", cfg.Redis.Prefix)
}

func TestLoad_ExplicitEnvFileMissing(t *testing.T) {
	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level: must be one of [debug info warn error]",
		},
		{
			name:    "unknown local backend",
			mutate:  func(c *Config) { c.Local.Backend = "etcd" },
			wantErr: "local.backend",
		},
		{
			name: "postgres without dsn",
			mutate: func(c *Config) {
				c.Remote.Backend = BackendPostgres
				c.Postgres.DSN = ""
			},
			wantErr: "postgres.dsn: required when the postgres backend is selected",
		},
		{
			name: "redis without addr",
			mutate: func(c *Config) {
				c.Local.Backend = BackendRedis
				c.Redis.Addr = ""
			},
			wantErr: "redis.addr: required when the redis backend is selected",
		},
		{
			name:    "zero debounce",
			mutate:  func(c *Config) { c.Sync.Debounce = 0 },
			wantErr: "sync.debounce",
		},
		{
			name:    "no retry attempts",
			mutate:  func(c *Config) { c.Sync.Retry.MaxAttempts = 0 },
			wantErr: "sync.retry.max_attempts",
		},
		{
			name: "max wait below initial wait",
			mutate: func(c *Config) {
				c.Sync.Retry.InitialWait = time.Second
				c.Sync.Retry.MaxWait = time.Millisecond
			},
			wantErr: "sync.retry.max_wait: must not be less than initial_wait",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "xml"
	cfg.Remote.Backend = "mongo"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
	assert.Contains(t, err.Error(), "remote.backend")
}
