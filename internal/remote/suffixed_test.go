package remote

import (
	"context"

	"github.com/abhisek/mlmathr/internal/progress"
)

// suffixed appends a suffix to every user ID.
type suffixed struct {
	Store
	suffix string
}

func (p *suffixed) Get(ctx context.Context, userID string) (progress.Snapshot, error) {
	return p.Store.Get(ctx, userID+p.suffix)
}

func (p *suffixed) Upsert(ctx context.Context, userID string, snap progress.Snapshot) error {
	return p.Store.Upsert(ctx, userID+p.suffix, snap)
}

func (p *suffixed) Insert(ctx context.Context, userID string, snap progress.Snapshot) error {
	return p.Store.Insert(ctx, userID+p.suffix, snap)
}
