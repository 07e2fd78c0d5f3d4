package worldtest

import (
	"testing"

	"colony.ai/internal/persistence/snapshot"
	world "colony.ai/internal/sim/world"
)

// Harness is a small black-box test helper for driving a colony via exported APIs:
// - Step()/StepFor() advance via StepOnce() and keep the last digest
// - StepUntil() runs until a condition holds or a tick budget runs out
// - Snapshot()/Resume() round-trip the world through a snapshot
//
// It intentionally avoids touching world internals so tests can live outside the world package.
type Harness struct {
	T *testing.T
	W *world.World

	LastDigest string
}

func NewHarness(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()
	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return &Harness{T: t, W: w}
}

// NewHarnessWithWorld is like NewHarness, but uses an already-constructed world instance.
func NewHarnessWithWorld(t *testing.T, w *world.World) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	return &Harness{T: t, W: w}
}

func (h *Harness) Step() world.TickStats {
	h.T.Helper()
	want := h.W.CurrentTick()
	tick, digest := h.W.StepOnce()
	if tick != want {
		h.T.Fatalf("stepped tick %d, want %d", tick, want)
	}
	h.LastDigest = digest
	return h.W.LastStats()
}

func (h *Harness) StepFor(n int) world.TickStats {
	h.T.Helper()
	st := h.W.LastStats()
	for i := 0; i < n; i++ {
		st = h.Step()
	}
	return st
}

// StepUntil steps until cond holds and returns the number of ticks taken.
// It fails the test if cond is still false after max ticks.
func (h *Harness) StepUntil(max int, cond func(*world.World) bool) int {
	h.T.Helper()
	for i := 1; i <= max; i++ {
		h.Step()
		if cond(h.W) {
			return i
		}
	}
	h.T.Fatalf("condition not reached within %d ticks (tick=%d stored=%d)", max, h.W.CurrentTick(), h.W.StoredFood())
	return 0
}

func (h *Harness) Bot(i int) world.Bot {
	h.T.Helper()
	bots := h.W.Bots()
	if i < 0 || i >= len(bots) {
		h.T.Fatalf("bot %d of %d", i, len(bots))
	}
	return bots[i]
}

func (h *Harness) Snapshot() snapshot.SnapshotV1 {
	h.T.Helper()
	return h.W.ExportSnapshot()
}

// Resume builds a second harness from a snapshot of this one.
func (h *Harness) Resume() *Harness {
	h.T.Helper()
	w, err := world.FromSnapshot(h.Snapshot())
	if err != nil {
		h.T.Fatalf("FromSnapshot: %v", err)
	}
	return NewHarnessWithWorld(h.T, w)
}

// RequireAccounted checks that every seeded unit is stored, carried or still on the field.
func (h *Harness) RequireAccounted() {
	h.T.Helper()
	st := h.W.LastStats()
	if st.Accounted() != st.SeededUnits {
		h.T.Fatalf("tick %d: accounted=%d seeded=%d", st.Tick, st.Accounted(), st.SeededUnits)
	}
}
