package screen

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/mlmathr/internal/achievements"
	"github.com/abhisek/mlmathr/internal/identity"
	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/store"
	"github.com/abhisek/mlmathr/internal/syncer"
)

// FlushTimeout bounds the save a screen waits on before switching identity.
const FlushTimeout = 10 * time.Second

// Syncer is the part of the sync engine that screens use.
type Syncer interface {
	Status() syncer.Status
	Flush(ctx context.Context) error
}

// Deps carries the services screens read from and act on.
type Deps struct {
	Machine  *progress.Machine
	Engine   Syncer
	Session  *identity.Session
	Local    *store.LocalProgress
	DeviceID string
	Logger   *slog.Logger
}

// Badges evaluates the badges earned by the live snapshot.
func (d Deps) Badges() []achievements.Badge {
	return achievements.Evaluate(d.Machine.Snapshot(), d.Machine.Graph())
}

// Status returns the sync status, or an uninitialized status without an
// engine.
func (d Deps) Status() syncer.Status {
	if d.Engine == nil {
		return syncer.Status{}
	}
	return d.Engine.Status()
}

// Flush saves pending progress, bounded by FlushTimeout.
func (d Deps) Flush() error {
	if d.Engine == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
	defer cancel()
	return d.Engine.Flush(ctx)
}

// Log returns the logger, falling back to the default one.
func (d Deps) Log() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Visit records id as the last opened item. Failures are only logged.
func (d Deps) Visit(id string) {
	if d.Local == nil {
		return
	}
	if err := d.Local.SetLastVisited(context.Background(), id); err != nil {
		d.Log().Warn("record last visited", "item", id, "error", err)
	}
}
