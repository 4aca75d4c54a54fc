package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/remote"
)

// ProgressRepo implements remote.Store on the SQLite progress table. It
// serves as the account store for single-machine setups and for
// development without a Postgres server.
type ProgressRepo struct {
	db *sql.DB
}

var _ remote.Store = (*ProgressRepo)(nil)

func (r *ProgressRepo) Get(ctx context.Context, userID string) (progress.Snapshot, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("data").
		From(b.Table(ProgressTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var raw string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.Snapshot{}, remote.ErrNotFound
	}
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("query progress: %w", err)
	}
	return progress.Decode([]byte(raw))
}

func (r *ProgressRepo) Upsert(ctx context.Context, userID string, snap progress.Snapshot) error {
	raw, err := progress.Encode(snap)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(ProgressTable.Name).
		Columns("user_id", "xp", "data", "created_at", "updated_at").
		Values(userID, snap.XP, string(raw), now, now).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("xp")
				u.SetExcluded("data")
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (r *ProgressRepo) Insert(ctx context.Context, userID string, snap progress.Snapshot) error {
	raw, err := progress.Encode(snap)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(ProgressTable.Name).
		Columns("user_id", "xp", "data", "created_at", "updated_at").
		Values(userID, snap.XP, string(raw), now, now).
		Query()

	_, err = r.db.ExecContext(ctx, query, args...)
	if sqlgraph.IsUniqueConstraintError(err) {
		return remote.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}
