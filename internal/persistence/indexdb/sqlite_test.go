package indexdb

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"colony.ai/internal/persistence/snapshot"
	"colony.ai/internal/sim/world"
)

func TestSQLiteIndex_TicksAndSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "run.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	cfg := world.WorldConfig{ID: "colony_1", Seed: 7, Width: 20, Height: 20, BotCount: 3, Behavior: "trail"}
	if err := idx.RecordRun(cfg); err != nil {
		t.Fatalf("record run: %v", err)
	}
	for tick := uint64(0); tick < 5; tick++ {
		_ = idx.WriteTick(world.TickLogEntry{Tick: tick, StoredFood: int(tick), Stored: 1, Digest: "d"})
	}
	idx.RecordSnapshot("snapshots/5.snap.zst", snapshot.SnapshotV1{
		Header:     snapshot.Header{Version: snapshot.Version, WorldID: "colony_1", Tick: 5},
		Seed:       7,
		StoredFood: 4,
		Bots:       []snapshot.BotV1{{Pos: [2]int{1, 1}, CarryingFood: true}, {Pos: [2]int{2, 2}}},
		Resources:  []snapshot.CellV1{{Pos: [2]int{3, 3}, Value: 2}, {Pos: [2]int{4, 4}, Value: 6}},
		Trails:     []snapshot.CellV1{{Pos: [2]int{1, 1}, Value: 5}},
	})
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if st := idx.Stats(); st.DropTickTotal != 0 || st.DropSnapshotTotal != 0 {
		t.Fatalf("unexpected drops: %+v", st)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	n, err := r.TickCount(ctx)
	if err != nil || n != 5 {
		t.Fatalf("tick count=%d err=%v", n, err)
	}
	ti, err := r.Tick(ctx, 3)
	if err != nil {
		t.Fatalf("tick 3: %v", err)
	}
	if ti.StoredFood != 3 || ti.Stored != 1 || ti.Digest != "d" {
		t.Fatalf("tick 3 = %+v", ti)
	}
	if _, err := r.Tick(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("tick 99 err=%v want ErrNotFound", err)
	}

	s, err := r.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	want := SnapshotInfo{
		Tick: 5, Path: "snapshots/5.snap.zst", Seed: 7,
		Bots: 2, Carrying: 1, ResourceCells: 2, ResourceUnits: 8, TrailCells: 1, StoredFood: 4,
	}
	if s != want {
		t.Fatalf("latest snapshot=%+v want %+v", s, want)
	}

	raw, err := r.Meta(ctx, "config")
	if err != nil {
		t.Fatalf("meta config: %v", err)
	}
	var m runMeta
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("meta json: %v", err)
	}
	if m.Seed != 7 || m.BotCount != 3 || m.Behavior != "trail" {
		t.Fatalf("meta=%+v", m)
	}
}

func TestSQLiteIndex_WritesAfterCloseAreIgnored(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "run.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := idx.WriteTick(world.TickLogEntry{Tick: 1}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	idx.RecordSnapshot("x", snapshot.SnapshotV1{})
	if err := idx.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
