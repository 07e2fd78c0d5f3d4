package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Reader lookups that match no row.
var ErrNotFound = errors.New("indexdb: not found")

// Reader queries an index written by SQLiteIndex. Open it after the writer
// has been closed, or from a different process.
type Reader struct {
	db *sql.DB
}

type SnapshotInfo struct {
	Tick          uint64
	Path          string
	Seed          int64
	Bots          int
	Carrying      int
	ResourceCells int
	ResourceUnits int
	TrailCells    int
	StoredFood    int
}

type TickInfo struct {
	Tick       uint64
	Digest     string
	StoredFood int
	PickedUp   int
	Stored     int
	Deposits   int
}

func OpenReader(path string) (*Reader, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

func (r *Reader) Meta(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *Reader) Tick(ctx context.Context, tick uint64) (TickInfo, error) {
	var t TickInfo
	var raw int64
	err := r.db.QueryRowContext(ctx,
		`SELECT tick,digest,stored_food,picked_up,stored,deposits FROM ticks WHERE tick=?`, int64(tick),
	).Scan(&raw, &t.Digest, &t.StoredFood, &t.PickedUp, &t.Stored, &t.Deposits)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("query tick %d: %w", tick, err)
	}
	t.Tick = uint64(raw)
	return t, nil
}

// TickCount is the number of indexed ticks.
func (r *Reader) TickCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ticks`).Scan(&n)
	return n, err
}

// LatestSnapshot returns the snapshot row with the highest tick.
func (r *Reader) LatestSnapshot(ctx context.Context) (SnapshotInfo, error) {
	var s SnapshotInfo
	var raw int64
	err := r.db.QueryRowContext(ctx,
		`SELECT tick,path,seed,bots,carrying,resource_cells,resource_units,trail_cells,stored_food
		 FROM snapshots ORDER BY tick DESC LIMIT 1`,
	).Scan(&raw, &s.Path, &s.Seed, &s.Bots, &s.Carrying, &s.ResourceCells, &s.ResourceUnits, &s.TrailCells, &s.StoredFood)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, fmt.Errorf("query latest snapshot: %w", err)
	}
	s.Tick = uint64(raw)
	return s, nil
}
