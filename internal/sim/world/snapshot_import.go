package world

import (
	"fmt"

	"colony.ai/internal/persistence/snapshot"
)

// FromSnapshot builds a world whose configuration and state both come from s.
func FromSnapshot(s snapshot.SnapshotV1) (*World, error) {
	cfg := WorldConfig{
		ID:                 s.Header.WorldID,
		Seed:               s.Seed,
		Width:              s.Width,
		Height:             s.Height,
		Behavior:           s.Behavior,
		PLeaveTrail:        s.PLeaveTrail,
		PFollowTrail:       s.PFollowTrail,
		ResourceDensity:    s.ResourceDensity,
		QuantityMean:       s.QuantityMean,
		QuantityStdev:      s.QuantityStdev,
		SnapshotEveryTicks: s.SnapshotEveryTicks,
		StatsBucketTicks:   s.StatsBucketTicks,
		StatsWindowTicks:   s.StatsWindowTicks,
		// Skip generation; ImportSnapshot fills everything in.
		InitialBots:      []Pos{},
		InitialResources: map[Pos]int{},
	}
	w, err := New(cfg)
	if err != nil {
		return nil, err
	}
	// PatchClusters only drives generation, which already happened.
	w.cfg.PatchClusters = s.PatchClusters
	if err := w.ImportSnapshot(s); err != nil {
		return nil, err
	}
	return w, nil
}

// ImportSnapshot replaces the current state with the snapshot. The world's
// tick becomes the snapshot tick, so the next Step simulates that tick.
//
// The snapshot is checked completely before anything is replaced.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version: %d", s.Header.Version)
	}

	// Basic parameter consistency checks.
	if w.cfg.Seed != s.Seed {
		return fmt.Errorf("snapshot seed mismatch: cfg=%d snap=%d", w.cfg.Seed, s.Seed)
	}
	if w.field.Width != s.Width || w.field.Height != s.Height {
		return fmt.Errorf("snapshot field mismatch: cfg=%dx%d snap=%dx%d", w.field.Width, w.field.Height, s.Width, s.Height)
	}
	if w.cfg.Behavior != s.Behavior {
		return fmt.Errorf("snapshot behavior mismatch: cfg=%s snap=%s", w.cfg.Behavior, s.Behavior)
	}

	rng := NewRandomSource(s.Seed)
	if err := rng.Restore(s.RNGState); err != nil {
		return fmt.Errorf("snapshot rng state: %w", err)
	}

	beh := w.cfg.behavior()
	bots := make([]Bot, 0, len(s.Bots))
	for i, b := range s.Bots {
		p := Pos{X: b.Pos[0], Y: b.Pos[1]}
		if !w.field.Contains(p) {
			return fmt.Errorf("snapshot bot %d at %v is outside the field", i, p)
		}
		bots = append(bots, Bot{
			Pos:          p,
			CarryingFood: b.CarryingFood,
			LeaveMark:    b.LeaveMark,
			TrackingOn:   b.TrackingOn,
			Behavior:     beh,
		})
	}

	resources := NewResourceStore()
	for _, c := range s.Resources {
		p := Pos{X: c.Pos[0], Y: c.Pos[1]}
		if !w.field.Contains(p) || p == w.field.Storage() {
			return fmt.Errorf("snapshot resource at %v is not a valid cell", p)
		}
		resources.Set(p, c.Value)
	}
	trails := NewTrailStore()
	for _, c := range s.Trails {
		p := Pos{X: c.Pos[0], Y: c.Pos[1]}
		if !w.field.Contains(p) {
			return fmt.Errorf("snapshot trail at %v is outside the field", p)
		}
		trails.set(p, c.Value)
	}
	if s.StoredFood < 0 {
		return fmt.Errorf("snapshot stored_food is negative: %d", s.StoredFood)
	}

	// Operational parameters: snapshot is authoritative when present.
	if s.SnapshotEveryTicks > 0 {
		w.cfg.SnapshotEveryTicks = s.SnapshotEveryTicks
	}

	w.rng = rng
	w.tick = s.Header.Tick
	w.bots = bots
	w.resources = resources
	w.trails = trails
	w.storedFood = s.StoredFood
	w.seededUnits = s.SeededUnits
	w.stats = NewWorldStats(uint64(w.cfg.StatsBucketTicks), uint64(w.cfg.StatsWindowTicks))
	w.last = w.collectStats()
	return nil
}
