package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mlmathr/internal/config"
	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/identity"
	"github.com/abhisek/mlmathr/internal/logging"
	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/remote"
	"github.com/abhisek/mlmathr/internal/store"
	"github.com/abhisek/mlmathr/internal/syncer"
)

const connectTimeout = 5 * time.Second

// runtime holds everything one process invocation needs: stores, the
// progress machine, the sync engine and the identity session.
type runtime struct {
	cfg      config.Config
	dbPath   string
	logger   *slog.Logger
	store    *store.Store
	kv       store.KV
	local    *store.LocalProgress
	remote   remote.Store
	machine  *progress.Machine
	engine   *syncer.Engine
	session  *identity.Session
	deviceID string

	closers []func()
}

// openRuntime loads config and wires the stores, machine, engine and
// session. logOut receives log records; the TUI passes a file.
func openRuntime(cmd *cobra.Command, logOut io.Writer) (*runtime, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	rt := &runtime{cfg: cfg, dbPath: dbPath}
	if logOut == nil {
		f, err := logging.OpenFile(dbPath)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { f.Close() })
		logOut = f
	}
	rt.logger, err = logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		rt.close()
		return nil, err
	}

	if err := rt.wire(ctx); err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) wire(ctx context.Context) error {
	st, err := store.Open(rt.dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	rt.store = st
	rt.closers = append(rt.closers, func() { st.Close() })

	switch rt.cfg.Local.Backend {
	case config.BackendRedis:
		rkv, err := store.OpenRedis(ctx, store.RedisConfig{
			Addr:        rt.cfg.Redis.Addr,
			Password:    rt.cfg.Redis.Password,
			DB:          rt.cfg.Redis.DB,
			Prefix:      rt.cfg.Redis.Prefix,
			DialTimeout: connectTimeout,
		})
		if err != nil {
			return fmt.Errorf("open local store: %w", err)
		}
		rt.kv = rkv
		rt.closers = append(rt.closers, func() { rkv.Close() })
	default:
		rt.kv = st.KV()
	}
	rt.local = store.NewLocalProgress(rt.kv)

	switch rt.cfg.Remote.Backend {
	case config.BackendPostgres:
		pg, err := remote.OpenPostgres(ctx, remote.PostgresConfig{
			DSN:            rt.cfg.Postgres.DSN,
			MaxConns:       rt.cfg.Postgres.MaxConns,
			ConnectTimeout: connectTimeout,
		})
		if err != nil {
			// Anonymous play still works; signed-in loads will report the
			// store as unavailable.
			rt.logger.Warn("remote store unavailable", "backend", config.BackendPostgres, "error", err)
		} else {
			rt.remote = pg
			rt.closers = append(rt.closers, pg.Close)
		}
	default:
		rt.remote = st.ProgressRepo()
	}

	graph := curriculum.Default()
	if p := rt.cfg.Curriculum.Path; p != "" {
		if graph, err = curriculum.LoadFile(p); err != nil {
			return err
		}
	}

	rt.deviceID, err = identity.DeviceID(ctx, rt.kv)
	if err != nil {
		return err
	}
	rt.logger = rt.logger.With("device", rt.deviceID)

	rt.machine = progress.NewMachine(graph, rt.logger)
	rt.engine = syncer.New(rt.machine, rt.local, rt.remote, syncer.Options{
		Debounce:    rt.cfg.Sync.Debounce,
		SaveTimeout: rt.cfg.Sync.SaveTimeout,
		MirrorLocal: rt.cfg.Sync.MirrorLocal,
		Retry: syncer.RetryConfig{
			MaxAttempts: rt.cfg.Sync.Retry.MaxAttempts,
			InitialWait: rt.cfg.Sync.Retry.InitialWait,
			MaxWait:     rt.cfg.Sync.Retry.MaxWait,
			Multiplier:  rt.cfg.Sync.Retry.Multiplier,
		},
		Logger: rt.logger,
	})

	rt.session = identity.NewSession(rt.kv)
	if _, err := rt.session.Restore(ctx); err != nil {
		return err
	}
	return nil
}

// load reads progress for the restored identity. One-shot commands call
// it before touching the machine.
func (rt *runtime) load(ctx context.Context) error {
	if err := rt.engine.SetIdentity(ctx, rt.session.Current()); err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	return nil
}

// flush writes pending changes, bounded by the configured save timeout.
func (rt *runtime) flush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, rt.cfg.Sync.SaveTimeout)
	defer cancel()
	if err := rt.engine.Flush(ctx); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// close flushes and releases resources in reverse order of acquisition.
func (rt *runtime) close() {
	if rt.engine != nil {
		if err := rt.flush(context.Background()); err != nil {
			rt.logger.Warn("final save failed", "error", err)
		}
		rt.engine.Close()
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// withLoaded opens the runtime for a one-shot command, loads progress,
// runs fn and saves whatever fn changed.
func withLoaded(cmd *cobra.Command, fn func(rt *runtime) error) error {
	rt, err := openRuntime(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.load(cmd.Context()); err != nil {
		return err
	}
	if err := fn(rt); err != nil {
		return err
	}
	return rt.flush(cmd.Context())
}

// loadConfig reads config, applying --db, --config and --log-level.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	opts := config.Options{Overrides: map[string]any{}}
	flags := cmd.Flags()
	if p, _ := flags.GetString("config"); p != "" {
		opts.File = p
	}
	if p, _ := flags.GetString("db"); p != "" {
		opts.Overrides["db"] = p
	}
	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		opts.Overrides["log.level"] = lvl
	}
	return config.Load(opts)
}

// resolveDBPath returns the database path from config (--db flag or
// MLMATHR_DB), then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
