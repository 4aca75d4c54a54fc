package remote

import (
	"context"
	"sync"

	"github.com/abhisek/mlmathr/internal/progress"
)

// Hooks intercept Memory operations. A hook runs before the operation;
// a non-nil error fails the operation without touching the records.
type Hooks struct {
	Get    func(ctx context.Context, userID string) error
	Upsert func(ctx context.Context, userID string, snap progress.Snapshot) error
	Insert func(ctx context.Context, userID string, snap progress.Snapshot) error
}

// Memory is an in-process Store. Records are kept in encoded form so
// reads go through the same decode path as a real backend.
type Memory struct {
	mu      sync.Mutex
	records map[string][]byte
	hooks   Hooks
	calls   map[string]int
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string][]byte),
		calls:   make(map[string]int),
	}
}

// SetHooks replaces the operation hooks.
func (m *Memory) SetHooks(h Hooks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = h
}

// Calls returns how many times op ("get", "upsert", "insert") was invoked,
// including failed calls.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Record returns the stored snapshot for userID without invoking hooks.
func (m *Memory) Record(userID string) (progress.Snapshot, bool) {
	m.mu.Lock()
	raw, ok := m.records[userID]
	m.mu.Unlock()
	if !ok {
		return progress.Snapshot{}, false
	}
	snap, err := progress.Decode(raw)
	if err != nil {
		return progress.Snapshot{}, false
	}
	return snap, true
}

// Put stores a record directly, bypassing hooks.
func (m *Memory) Put(userID string, snap progress.Snapshot) {
	raw, _ := progress.Encode(snap)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID] = raw
}

func (m *Memory) enter(op string) Hooks {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	return m.hooks
}

func (m *Memory) Get(ctx context.Context, userID string) (progress.Snapshot, error) {
	if h := m.enter("get").Get; h != nil {
		if err := h(ctx, userID); err != nil {
			return progress.Snapshot{}, err
		}
	}
	m.mu.Lock()
	raw, ok := m.records[userID]
	m.mu.Unlock()
	if !ok {
		return progress.Snapshot{}, ErrNotFound
	}
	return progress.Decode(raw)
}

func (m *Memory) Upsert(ctx context.Context, userID string, snap progress.Snapshot) error {
	if h := m.enter("upsert").Upsert; h != nil {
		if err := h(ctx, userID, snap); err != nil {
			return err
		}
	}
	raw, err := progress.Encode(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID] = raw
	return nil
}

func (m *Memory) Insert(ctx context.Context, userID string, snap progress.Snapshot) error {
	if h := m.enter("insert").Insert; h != nil {
		if err := h(ctx, userID, snap); err != nil {
			return err
		}
	}
	raw, err := progress.Encode(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[userID]; ok {
		return ErrAlreadyExists
	}
	m.records[userID] = raw
	return nil
}
