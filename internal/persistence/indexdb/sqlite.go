package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"colony.ai/internal/persistence/snapshot"
	"colony.ai/internal/sim/world"
)

// SQLiteIndex is a read-model of one run: tick digests and snapshot
// metadata. Writes are queued to a single writer goroutine and dropped when
// the queue is full; the JSONL tick log stays the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTicks     atomic.Uint64
	dropSnapshots atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	snapshot snapshotRow
}

type snapshotRow struct {
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

// QueueStats reports writer backpressure.
type QueueStats struct {
	QueueDepth        int
	QueueCapacity     int
	DropTickTotal     uint64
	DropSnapshotTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	return openSQLite(path, 65536)
}

func openSQLite(path string, queue int) (*SQLiteIndex, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, queue),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func openDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			stored_food INTEGER NOT NULL,
			picked_up INTEGER NOT NULL,
			stored INTEGER NOT NULL,
			deposits INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			bots INTEGER NOT NULL,
			carrying INTEGER NOT NULL,
			resource_cells INTEGER NOT NULL,
			resource_units INTEGER NOT NULL,
			trail_cells INTEGER NOT NULL,
			stored_food INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordRun stores the world configuration under the meta table. It runs
// synchronously and is meant to be called once, before stepping starts.
func (s *SQLiteIndex) RecordRun(cfg world.WorldConfig) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(runMeta{
		ID:              cfg.ID,
		Seed:            cfg.Seed,
		Width:           cfg.Width,
		Height:          cfg.Height,
		BotCount:        cfg.BotCount,
		Behavior:        cfg.Behavior,
		PLeaveTrail:     cfg.PLeaveTrail,
		PFollowTrail:    cfg.PFollowTrail,
		ResourceDensity: cfg.ResourceDensity,
		QuantityMean:    cfg.QuantityMean,
		QuantityStdev:   cfg.QuantityStdev,
		PatchClusters:   cfg.PatchClusters,
	})
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for k, v := range map[string]string{
		"schema_version": "1",
		"world_id":       cfg.ID,
		"config":         string(b),
		"recorded_at":    now,
	} {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type runMeta struct {
	ID              string  `json:"id"`
	Seed            int64   `json:"seed"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	BotCount        int     `json:"bot_count"`
	Behavior        string  `json:"behavior"`
	PLeaveTrail     float64 `json:"p_leave_trail"`
	PFollowTrail    float64 `json:"p_follow_trail"`
	ResourceDensity float64 `json:"resource_density"`
	QuantityMean    float64 `json:"quantity_mean"`
	QuantityStdev   float64 `json:"quantity_stdev"`
	PatchClusters   int     `json:"patch_clusters"`
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		s.dropTicks.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Tick:          snap.Header.Tick,
		Path:          path,
		Seed:          snap.Seed,
		Bots:          len(snap.Bots),
		Carrying:      snap.Carrying(),
		ResourceCells: len(snap.Resources),
		ResourceUnits: snap.UnitsOnField(),
		TrailCells:    len(snap.Trails),
		StoredFood:    snap.StoredFood,
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshots.Add(1)
	}
}

func (s *SQLiteIndex) Stats() QueueStats {
	if s == nil {
		return QueueStats{}
	}
	return QueueStats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTickTotal:     s.dropTicks.Load(),
		DropSnapshotTotal: s.dropSnapshots.Load(),
	}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,stored_food,picked_up,stored,deposits) VALUES(?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,seed,bots,carrying,resource_cells,resource_units,trail_cells,stored_food) VALUES(?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertTick != nil {
			_ = insertTick.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			if insertTick == nil {
				continue
			}
			t := r.tick
			if _, err := tx.Stmt(insertTick).Exec(int64(t.Tick), t.Digest, t.StoredFood, t.PickedUp, t.Stored, t.Deposits); err != nil {
				rollback()
				continue
			}
			opCount++

		case reqSnapshot:
			if insertSnapshot == nil {
				continue
			}
			sn := r.snapshot
			if _, err := tx.Stmt(insertSnapshot).Exec(
				int64(sn.Tick),
				sn.Path,
				sn.Seed,
				sn.Bots,
				sn.Carrying,
				sn.ResourceCells,
				sn.ResourceUnits,
				sn.TrailCells,
				sn.StoredFood,
			); err != nil {
				rollback()
				continue
			}
			opCount++
		}

		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}
	commit()
}
