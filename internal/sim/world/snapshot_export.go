package world

import (
	"colony.ai/internal/persistence/snapshot"
)

// ExportSnapshot captures the complete state, including the RNG, after the
// last completed tick.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	rngState, err := w.rng.State()
	if err != nil {
		// PCG state marshalling cannot fail; keep the snapshot usable for inspection.
		w.logger.Error("export rng state", "err", err)
	}

	bots := make([]snapshot.BotV1, 0, len(w.bots))
	for _, b := range w.bots {
		bots = append(bots, snapshot.BotV1{
			Pos:          [2]int{b.Pos.X, b.Pos.Y},
			CarryingFood: b.CarryingFood,
			LeaveMark:    b.LeaveMark,
			TrackingOn:   b.TrackingOn,
		})
	}

	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    w.tick,
		},
		Seed:               w.cfg.Seed,
		Width:              w.field.Width,
		Height:             w.field.Height,
		Behavior:           w.cfg.Behavior,
		PLeaveTrail:        w.cfg.PLeaveTrail,
		PFollowTrail:       w.cfg.PFollowTrail,
		ResourceDensity:    w.cfg.ResourceDensity,
		QuantityMean:       w.cfg.QuantityMean,
		QuantityStdev:      w.cfg.QuantityStdev,
		PatchClusters:      w.cfg.PatchClusters,
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
		StatsBucketTicks:   w.cfg.StatsBucketTicks,
		StatsWindowTicks:   w.cfg.StatsWindowTicks,
		RNGState:           rngState,
		StoredFood:         w.storedFood,
		SeededUnits:        w.seededUnits,
		Bots:               bots,
		Resources:          exportCells(w.resources.cells),
		Trails:             exportCells(w.trails.cells),
	}
}

func exportCells(m map[Pos]int) []snapshot.CellV1 {
	out := make([]snapshot.CellV1, 0, len(m))
	for _, p := range sortedKeys(m) {
		out = append(out, snapshot.CellV1{Pos: [2]int{p.X, p.Y}, Value: m[p]})
	}
	return out
}
