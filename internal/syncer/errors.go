package syncer

import (
	"errors"
	"fmt"

	"github.com/abhisek/mlmathr/internal/identity"
)

var (
	// ErrStorageUnavailable matches every StorageError.
	ErrStorageUnavailable = errors.New("progress storage unavailable")

	// ErrSuperseded is returned by a load whose identity was replaced
	// before it finished. Its result is discarded.
	ErrSuperseded = errors.New("load superseded by identity change")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("sync engine closed")

	// errNoRemote is wrapped in a StorageError when an authenticated
	// identity is used without a remote store.
	errNoRemote = errors.New("no remote store configured")
)

// StorageError reports a failed read or write against a backing store.
// The engine stays in a non-terminal state and retries on the next trigger.
type StorageError struct {
	Op       string // "get", "insert", "read-back", "upsert", "save-local"
	Identity identity.Identity
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s progress for %s: %v", e.Op, e.Identity, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorageUnavailable) true for every StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }
