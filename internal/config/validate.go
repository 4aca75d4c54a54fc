package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(backendStructValidation, Config{})
	})
	return validate
}

// backendStructValidation checks settings that only apply to the chosen
// backends.
func backendStructValidation(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Local.Backend == BackendRedis && cfg.Redis.Addr == "" {
		sl.ReportError(cfg.Redis.Addr, "Redis.Addr", "Addr", "required_for_backend", BackendRedis)
	}
	if cfg.Remote.Backend == BackendPostgres && cfg.Postgres.DSN == "" {
		sl.ReportError(cfg.Postgres.DSN, "Postgres.DSN", "DSN", "required_for_backend", BackendPostgres)
	}
	if cfg.Sync.Retry.MaxWait > 0 && cfg.Sync.Retry.MaxWait < cfg.Sync.Retry.InitialWait {
		sl.ReportError(cfg.Sync.Retry.MaxWait, "Sync.Retry.MaxWait", "MaxWait", "gtefield", "initial_wait")
	}
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config:\n  %s", strings.Join(msgs, "\n  "))
}

// describe renders a field error using the dotted config key.
func describe(fe validator.FieldError) string {
	key := configKey(fe.Namespace())
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %q", key, fe.Param(), fmt.Sprint(fe.Value()))
	case "required_for_backend":
		return fmt.Sprintf("%s: required when the %s backend is selected", key, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s: must not be less than %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value())
	}
}

var keyNames = map[string]string{
	"SaveTimeout": "save_timeout",
	"MirrorLocal": "mirror_local",
	"MaxAttempts": "max_attempts",
	"InitialWait": "initial_wait",
	"MaxWait":     "max_wait",
	"MaxConns":    "max_conns",
}

// configKey maps a validator namespace like "Config.Sync.Retry.MaxWait"
// to the viper key "sync.retry.max_wait".
func configKey(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		if k, ok := keyNames[p]; ok {
			parts[i] = k
			continue
		}
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}
