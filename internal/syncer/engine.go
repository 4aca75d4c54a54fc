// Package syncer keeps the progress state machine in step with durable
// storage: it loads and reconciles snapshots when the identity changes and
// writes changes back after a quiet period.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/mlmathr/internal/identity"
	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/remote"
)

// State is the engine's lifecycle state.
type State int

const (
	StateUninitialized State = iota // No identity yet
	StateLoading                    // Reading stores for the current identity
	StateLoaded                     // Machine holds the authoritative snapshot
	StateSaving                     // Loaded, with a write in flight
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// Local is the device-local snapshot store.
type Local interface {
	Load(ctx context.Context) (progress.Snapshot, bool, error)
	Save(ctx context.Context, snap progress.Snapshot) error
}

// Options configures an Engine.
type Options struct {
	// Debounce is the quiet period after the last change before a save.
	Debounce time.Duration

	// SaveTimeout bounds each debounced save.
	SaveTimeout time.Duration

	// MirrorLocal also writes the local store after a successful remote
	// save while authenticated.
	MirrorLocal bool

	Retry  RetryConfig
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the CLI and TUI.
func DefaultOptions() Options {
	return Options{
		Debounce:    time.Second,
		SaveTimeout: 10 * time.Second,
		MirrorLocal: true,
		Retry:       DefaultRetryConfig(),
	}
}

// Status is a point-in-time view of the engine for display.
type Status struct {
	State         State
	Identity      identity.Identity
	Generation    uint64
	Dirty         bool
	SavedRevision uint64
	LastLoadErr   error
	LastSaveErr   error
}

// Engine bridges a progress.Machine to a local and a remote store.
//
// Every identity change bumps a generation counter; loads, timers and save
// completions carry the generation they started under and are discarded
// once it is stale. At most one save runs at a time.
type Engine struct {
	machine *progress.Machine
	local   Local
	remote  remote.Store
	opts    Options
	logger  *slog.Logger

	mu            sync.Mutex
	cond          *sync.Cond
	state         State
	identity      identity.Identity
	gen           uint64
	cancelLoad    context.CancelFunc
	timer         *time.Timer
	dirty         bool
	saving        bool
	resave        bool
	savedRevision uint64
	lastLoadErr   error
	lastSaveErr   error
	closed        bool
	unsubscribe   []func()
}

// New creates an engine and subscribes it to machine changes. The remote
// store may be nil when only anonymous use is possible.
func New(machine *progress.Machine, local Local, rs remote.Store, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = time.Second
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 10 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryConfig()
	}

	e := &Engine{
		machine: machine,
		local:   local,
		remote:  rs,
		opts:    opts,
		logger:  opts.Logger.With("component", "sync"),
	}
	e.cond = sync.NewCond(&e.mu)
	e.unsubscribe = append(e.unsubscribe, machine.Subscribe(e.onChange))
	return e
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state
	if st == StateLoaded && e.saving {
		st = StateSaving
	}
	return Status{
		State:         st,
		Identity:      e.identity,
		Generation:    e.gen,
		Dirty:         e.dirty,
		SavedRevision: e.savedRevision,
		LastLoadErr:   e.lastLoadErr,
		LastSaveErr:   e.lastSaveErr,
	}
}

// SetIdentity switches to id and loads its progress. Any pending save
// timer is cancelled and an in-flight load for the previous identity is
// abandoned. It returns once the machine holds the reconciled snapshot,
// or with an error that leaves the engine in StateLoading.
func (e *Engine) SetIdentity(ctx context.Context, id identity.Identity) error {
	lctx, gen, err := e.begin(ctx, id)
	if err != nil {
		return err
	}
	return e.load(lctx, gen, id)
}

// Reload re-runs the load for the current identity, typically after a
// storage error.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	id := e.identity
	e.mu.Unlock()
	return e.SetIdentity(ctx, id)
}

// Start loads progress for p's current identity in the background and
// then follows its transitions like Watch. Load failures are visible
// through Status.
func (e *Engine) Start(ctx context.Context, p identity.Provider) (stop func()) {
	stop = e.Watch(ctx, p)
	e.loadAsync(ctx, p.Current())
	return stop
}

// Watch follows identity transitions from p until the returned function
// is called. Loads triggered by transitions run in the background; their
// failures are visible through Status.
func (e *Engine) Watch(ctx context.Context, p identity.Provider) (stop func()) {
	unsubscribe := p.Subscribe(func(id identity.Identity) {
		e.loadAsync(ctx, id)
	})
	e.mu.Lock()
	e.unsubscribe = append(e.unsubscribe, unsubscribe)
	e.mu.Unlock()
	return unsubscribe
}

// loadAsync switches to id now and loads its progress on a goroutine.
func (e *Engine) loadAsync(ctx context.Context, id identity.Identity) {
	lctx, gen, err := e.begin(ctx, id)
	if err != nil {
		return
	}
	go func() {
		if err := e.load(lctx, gen, id); err != nil && !errors.Is(err, ErrSuperseded) {
			e.logger.Warn("background load failed", "identity", id.String(), "error", err)
		}
	}()
}

// begin performs the synchronous half of an identity change.
func (e *Engine) begin(ctx context.Context, id identity.Identity) (context.Context, uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, 0, ErrClosed
	}

	e.stopTimerLocked()
	if e.cancelLoad != nil {
		e.cancelLoad()
	}
	e.gen++
	e.identity = id
	e.state = StateLoading
	e.dirty = false
	e.resave = false
	e.lastLoadErr = nil
	e.machine.Unload()

	lctx, cancel := context.WithCancel(ctx)
	e.cancelLoad = cancel
	return lctx, e.gen, nil
}

// load reads, reconciles and installs the snapshot for id.
func (e *Engine) load(ctx context.Context, gen uint64, id identity.Identity) error {
	logger := e.logger.With("identity", id.String(), "generation", gen)
	logger.Debug("loading progress")

	local := e.readLocal(ctx, logger)
	effective := local
	needsSave := false

	if !id.IsAnonymous() {
		stored, err := e.fetchRemote(ctx, gen, id, local)
		if err != nil {
			if e.current(gen) && !errors.Is(err, ErrSuperseded) {
				e.mu.Lock()
				e.lastLoadErr = err
				e.mu.Unlock()
				logger.Warn("progress load failed; staying in loading state", "error", err)
				return err
			}
			return ErrSuperseded
		}
		effective = progress.Merge(local, stored)
		needsSave = !effective.Equal(stored)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen || e.closed {
		return ErrSuperseded
	}
	e.machine.Load(effective)
	e.state = StateLoaded
	e.lastLoadErr = nil
	e.savedRevision = e.machine.Revision()
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	if needsSave {
		// Local progress was adopted into the account record.
		e.dirty = true
		e.armLocked()
	}
	logger.Info("progress loaded", "xp", effective.XP, "completed", len(effective.Completed))
	return nil
}

// readLocal returns the local snapshot. Missing, corrupt or unreadable
// data is treated as empty.
func (e *Engine) readLocal(ctx context.Context, logger *slog.Logger) progress.Snapshot {
	if e.local == nil {
		return progress.Empty()
	}
	snap, _, err := e.local.Load(ctx)
	if err != nil {
		if errors.Is(err, progress.ErrCorruptData) {
			logger.Warn("local progress is corrupt; starting empty", "error", err)
		} else {
			logger.Warn("local progress unreadable; starting empty", "error", err)
		}
		return progress.Empty()
	}
	return snap
}

// fetchRemote reads the account record, seeding it from local progress on
// first login. The seed is only trusted once it has been read back.
func (e *Engine) fetchRemote(ctx context.Context, gen uint64, id identity.Identity, local progress.Snapshot) (progress.Snapshot, error) {
	if e.remote == nil {
		return progress.Snapshot{}, &StorageError{Op: "get", Identity: id, Err: errNoRemote}
	}
	uid := id.UserID()

	get := func(ctx context.Context) (progress.Snapshot, error) { return e.remote.Get(ctx, uid) }
	stored, err := withRetry(ctx, e.opts.Retry, get)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, remote.ErrNotFound) {
		return progress.Snapshot{}, &StorageError{Op: "get", Identity: id, Err: err}
	}

	if !e.current(gen) {
		return progress.Snapshot{}, ErrSuperseded
	}
	e.logger.Info("creating account progress record", "identity", id.String())
	_, err = withRetry(ctx, e.opts.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, e.remote.Insert(ctx, uid, local)
	})
	if err != nil && !errors.Is(err, remote.ErrAlreadyExists) {
		return progress.Snapshot{}, &StorageError{Op: "insert", Identity: id, Err: err}
	}

	stored, err = withRetry(ctx, e.opts.Retry, get)
	if err != nil {
		return progress.Snapshot{}, &StorageError{Op: "read-back", Identity: id, Err: err}
	}
	return stored, nil
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen == gen && !e.closed
}

// onChange is the machine subscription. Loads are ignored before taking
// the engine lock because the engine itself installs them while holding it.
func (e *Engine) onChange(c progress.Change) {
	if c.Origin == progress.OriginLoad {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != StateLoaded {
		return
	}
	e.dirty = true
	e.armLocked()
}

// armLocked (re)starts the debounce timer for the current generation.
func (e *Engine) armLocked() {
	e.stopTimerLocked()
	gen := e.gen
	e.timer = time.AfterFunc(e.opts.Debounce, func() { e.fire(gen) })
}

func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// fire runs when the debounce timer expires.
func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen || e.closed || e.state != StateLoaded {
		return
	}
	if e.saving {
		e.resave = true
		return
	}
	if !e.dirty {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.SaveTimeout)
	defer cancel()
	e.saveLocked(ctx)
}

// Flush cancels the debounce timer and saves immediately if there are
// unsaved changes, waiting for any in-flight save first.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.saving {
		e.cond.Wait()
	}
	if e.closed {
		return ErrClosed
	}
	if e.state != StateLoaded || !e.dirty {
		return nil
	}
	e.stopTimerLocked()
	return e.saveLocked(ctx)
}

// saveLocked persists the machine's current snapshot. It is called with
// e.mu held and releases it for the duration of the I/O.
func (e *Engine) saveLocked(ctx context.Context) error {
	gen := e.gen
	id := e.identity
	snap, rev := e.machine.SnapshotAt()
	e.saving = true
	e.dirty = false
	e.resave = false

	e.mu.Unlock()
	err := e.persist(ctx, id, snap)
	e.mu.Lock()

	e.saving = false
	e.cond.Broadcast()

	current := e.gen == gen
	if err != nil {
		if current {
			e.lastSaveErr = err
			e.dirty = true
		}
		e.logger.Warn("progress save failed; will retry on next change", "identity", id.String(), "error", err)
	} else {
		if current {
			e.lastSaveErr = nil
			e.savedRevision = rev
		}
		e.logger.Debug("progress saved", "identity", id.String(), "revision", rev)
	}

	// begin clears resave, so a set flag always belongs to the current
	// generation even when this save was for an earlier one.
	if e.resave && !e.closed {
		e.resave = false
		if e.dirty {
			e.armLocked()
		}
	}
	return err
}

// persist writes snap to the store that matches id.
func (e *Engine) persist(ctx context.Context, id identity.Identity, snap progress.Snapshot) error {
	if id.IsAnonymous() {
		if e.local == nil {
			return nil
		}
		if err := e.local.Save(ctx, snap); err != nil {
			return &StorageError{Op: "save-local", Identity: id, Err: err}
		}
		return nil
	}

	if e.remote == nil {
		return &StorageError{Op: "upsert", Identity: id, Err: errNoRemote}
	}
	_, err := withRetry(ctx, e.opts.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, e.remote.Upsert(ctx, id.UserID(), snap)
	})
	if err != nil {
		return &StorageError{Op: "upsert", Identity: id, Err: err}
	}

	if e.opts.MirrorLocal && e.local != nil {
		if err := e.local.Save(ctx, snap); err != nil {
			e.logger.Warn("local mirror write failed", "identity", id.String(), "error", err)
		}
	}
	return nil
}

// Close stops timers, abandons in-flight loads and detaches from the
// machine and identity provider. It does not save; call Flush first.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopTimerLocked()
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	e.cond.Broadcast()
	e.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
}
