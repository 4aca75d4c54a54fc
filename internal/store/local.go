package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/mlmathr/internal/progress"
)

// Local storage keys.
const (
	KeyProgress    = "progress"
	KeyLastVisited = "lastVisited"

	legacyKeyXP        = "xp"
	legacyKeyCompleted = "completedLessons"
	legacyKeyQuizzes   = "quizScores"
)

var legacyKeys = []string{legacyKeyXP, legacyKeyCompleted, legacyKeyQuizzes}

// LocalProgress persists the device-local progress snapshot as a single
// combined blob, so reads and writes are atomic at snapshot granularity.
// Snapshots written by older builds under three separate keys are read
// when no combined blob exists and folded into it on the next save.
type LocalProgress struct {
	kv KV

	mu        sync.Mutex
	hasLegacy bool
}

// NewLocalProgress creates a LocalProgress over kv.
func NewLocalProgress(kv KV) *LocalProgress {
	return &LocalProgress{kv: kv}
}

// Load returns the stored snapshot and whether one was present. A blob
// that cannot be decoded yields an empty snapshot together with an error
// wrapping progress.ErrCorruptData.
func (l *LocalProgress) Load(ctx context.Context) (progress.Snapshot, bool, error) {
	raw, ok, err := l.kv.Get(ctx, KeyProgress)
	if err != nil {
		return progress.Empty(), false, fmt.Errorf("load local progress: %w", err)
	}
	if ok {
		snap, err := progress.Decode([]byte(raw))
		if err != nil {
			return progress.Empty(), true, fmt.Errorf("load local progress: %w", err)
		}
		return snap, true, nil
	}
	return l.loadLegacy(ctx)
}

func (l *LocalProgress) loadLegacy(ctx context.Context) (progress.Snapshot, bool, error) {
	values := make([]string, len(legacyKeys))
	found := false
	for i, k := range legacyKeys {
		v, ok, err := l.kv.Get(ctx, k)
		if err != nil {
			return progress.Empty(), false, fmt.Errorf("load legacy %s: %w", k, err)
		}
		if ok {
			values[i] = v
			found = true
		}
	}
	if !found {
		return progress.Empty(), false, nil
	}

	l.mu.Lock()
	l.hasLegacy = true
	l.mu.Unlock()
	return progress.DecodeLegacy(values[0], values[1], values[2]), true, nil
}

// Save writes snap as the combined blob and, if legacy keys were read
// earlier, removes them.
func (l *LocalProgress) Save(ctx context.Context, snap progress.Snapshot) error {
	b, err := progress.Encode(snap)
	if err != nil {
		return err
	}
	if err := l.kv.Set(ctx, KeyProgress, string(b)); err != nil {
		return fmt.Errorf("save local progress: %w", err)
	}

	l.mu.Lock()
	cleanup := l.hasLegacy
	l.mu.Unlock()
	if !cleanup {
		return nil
	}
	for _, k := range legacyKeys {
		if err := l.kv.Remove(ctx, k); err != nil {
			return fmt.Errorf("remove legacy %s: %w", k, err)
		}
	}
	l.mu.Lock()
	l.hasLegacy = false
	l.mu.Unlock()
	return nil
}

// LastVisited returns the ID of the item the learner last opened.
func (l *LocalProgress) LastVisited(ctx context.Context) (string, error) {
	v, _, err := l.kv.Get(ctx, KeyLastVisited)
	if err != nil {
		return "", fmt.Errorf("load last visited: %w", err)
	}
	return v, nil
}

// SetLastVisited records the item the learner last opened.
func (l *LocalProgress) SetLastVisited(ctx context.Context, id string) error {
	if err := l.kv.Set(ctx, KeyLastVisited, id); err != nil {
		return fmt.Errorf("save last visited: %w", err)
	}
	return nil
}
