// Package remote defines the per-user progress store contract and its
// implementations.
package remote

import (
	"context"
	"errors"

	"github.com/abhisek/mlmathr/internal/progress"
)

var (
	// ErrNotFound is returned by Get when the user has no record yet.
	ErrNotFound = errors.New("remote: progress record not found")

	// ErrAlreadyExists is returned by Insert when a record exists.
	ErrAlreadyExists = errors.New("remote: progress record already exists")
)

// Store holds one progress record per authenticated user.
type Store interface {
	// Get returns the user's record or ErrNotFound.
	Get(ctx context.Context, userID string) (progress.Snapshot, error)

	// Upsert replaces the user's record, creating it if needed.
	Upsert(ctx context.Context, userID string, snap progress.Snapshot) error

	// Insert creates the user's record, failing with ErrAlreadyExists if
	// one is present.
	Insert(ctx context.Context, userID string, snap progress.Snapshot) error
}
