// Package screentest builds screen dependencies over in-memory stores for
// screen tests.
package screentest

import (
	"context"
	"sync"
	"testing"

	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/identity"
	"github.com/abhisek/mlmathr/internal/logging"
	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/store"
	"github.com/abhisek/mlmathr/internal/syncer"
)

// Engine is a screen.Syncer with a settable status that counts flushes.
type Engine struct {
	mu      sync.Mutex
	status  syncer.Status
	flushes int
	err     error
}

// SetStatus replaces the reported status.
func (e *Engine) SetStatus(st syncer.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = st
}

// FailFlush makes subsequent flushes return err.
func (e *Engine) FailFlush(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Flushes returns how many times Flush was called.
func (e *Engine) Flushes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flushes
}

func (e *Engine) Status() syncer.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) Flush(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushes++
	return e.err
}

// Deps returns dependencies whose machine is loaded with snap and whose
// engine reports a loaded anonymous identity.
func Deps(t *testing.T, snap progress.Snapshot) (screen.Deps, *Engine) {
	t.Helper()
	kv := store.NewMemoryKV()
	m := progress.NewMachine(curriculum.Default(), logging.Discard())
	m.Load(snap)

	eng := &Engine{status: syncer.Status{State: syncer.StateLoaded, Identity: identity.Anonymous()}}
	return screen.Deps{
		Machine:  m,
		Engine:   eng,
		Session:  identity.NewSession(kv),
		Local:    store.NewLocalProgress(kv),
		DeviceID: "00000000-0000-4000-8000-000000000000",
		Logger:   logging.Discard(),
	}, eng
}

// Unloaded returns dependencies whose machine has not been loaded yet.
func Unloaded(t *testing.T) (screen.Deps, *Engine) {
	t.Helper()
	d, eng := Deps(t, progress.Empty())
	d.Machine = progress.NewMachine(curriculum.Default(), logging.Discard())
	eng.SetStatus(syncer.Status{State: syncer.StateLoading})
	return d, eng
}

var _ screen.Syncer = (*Engine)(nil)
