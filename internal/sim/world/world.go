package world

import (
	"io"

	"github.com/charmbracelet/log"

	"colony.ai/internal/persistence/snapshot"
)

// World is a single-threaded, steppable foraging simulation.
// All state must be accessed from one goroutine.
type World struct {
	cfg   WorldConfig
	field Field
	rng   *RandomSource

	// tick is the number of completed ticks (and the index of the next one).
	tick uint64

	bots       []Bot
	resources  *ResourceStore
	trails     *TrailStore
	storedFood int

	// seededUnits is the resource total right after initialization.
	seededUnits int

	last  TickStats
	stats *WorldStats

	logger *log.Logger

	// Optional sinks (may be nil). Implemented in internal/persistence/*.
	tickLogger   TickLogger
	snapshotSink chan<- snapshot.SnapshotV1
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// TickLogEntry is written once per completed tick. Digest is the state
// digest after the tick, which is what replay verifies against.
type TickLogEntry struct {
	Tick       uint64 `json:"tick"`
	StoredFood int    `json:"stored_food"`
	PickedUp   int    `json:"picked_up,omitempty"`
	Stored     int    `json:"stored,omitempty"`
	Deposits   int    `json:"deposits,omitempty"`
	Digest     string `json:"digest"`
}

// New validates cfg and builds a fresh world: resources are seeded (and
// optionally declustered) first, then bots are spawned, all from one RNG.
func New(cfg WorldConfig) (*World, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	w := &World{
		cfg:       cfg,
		field:     Field{Width: cfg.Width, Height: cfg.Height},
		rng:       NewRandomSource(cfg.Seed),
		resources: NewResourceStore(),
		trails:    NewTrailStore(),
		stats:     NewWorldStats(uint64(cfg.StatsBucketTicks), uint64(cfg.StatsWindowTicks)),
		logger:    log.New(io.Discard),
	}

	if cfg.InitialResources != nil {
		for p, q := range cfg.InitialResources {
			w.resources.Set(p, q)
		}
	} else {
		w.resources.Init(w.field, cfg.ResourceDensity, QuantityDist{Mean: cfg.QuantityMean, Stdev: cfg.QuantityStdev}, w.rng)
	}
	if cfg.PatchClusters > 0 {
		w.resources.Decluster(w.field, cfg.PatchClusters, w.rng)
	}
	w.seededUnits = w.resources.Total()

	beh := cfg.behavior()
	if cfg.InitialBots != nil {
		w.bots = make([]Bot, 0, len(cfg.InitialBots))
		for _, p := range cfg.InitialBots {
			w.bots = append(w.bots, Bot{Pos: p, Behavior: beh})
		}
	} else {
		w.bots = spawnBots(w.field, cfg.BotCount, beh, w.rng)
	}
	w.last = w.collectStats()
	return w, nil
}

// NewWorld is the flat-argument constructor external collaborators use.
// Bots are trail-aware.
func NewWorld(fieldWidth, fieldHeight, botCount int, resourceDensity, quantityMean, quantityStdev, pLeaveTrail, pFollowTrail float64, seed int64) (*World, error) {
	return New(WorldConfig{
		Seed:            seed,
		Width:           fieldWidth,
		Height:          fieldHeight,
		BotCount:        botCount,
		Behavior:        BehaviorNameTrailAware,
		PLeaveTrail:     pLeaveTrail,
		PFollowTrail:    pFollowTrail,
		ResourceDensity: resourceDensity,
		QuantityMean:    quantityMean,
		QuantityStdev:   quantityStdev,
	})
}

// spawnBots places n bots on distinct cells drawn uniformly from the spawn
// box around storage. The caller guarantees n fits the box.
func spawnBots(f Field, n int, beh Behavior, rng *RandomSource) []Bot {
	lo, hi := f.spawnBox()
	taken := make(map[Pos]bool, n)
	bots := make([]Bot, 0, n)
	for len(bots) < n {
		p := Pos{
			X: lo.X + rng.IntN(hi.X-lo.X+1),
			Y: lo.Y + rng.IntN(hi.Y-lo.Y+1),
		}
		if taken[p] {
			continue
		}
		taken[p] = true
		bots = append(bots, Bot{Pos: p, Behavior: beh})
	}
	return bots
}

func (w *World) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	w.logger = l
	w.logger.Debug("world ready",
		"id", w.cfg.ID, "seed", w.cfg.Seed,
		"field", [2]int{w.field.Width, w.field.Height},
		"bots", len(w.bots), "behavior", w.cfg.behavior().Name(),
		"resource_cells", w.resources.Len(), "resource_units", w.seededUnits)
}

func (w *World) SetTickLogger(l TickLogger)                    { w.tickLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) ID() string             { return w.cfg.ID }
func (w *World) Config() WorldConfig    { return w.cfg }
func (w *World) Field() Field           { return w.field }
func (w *World) CurrentTick() uint64    { return w.tick }
func (w *World) StoredFood() int        { return w.storedFood }
func (w *World) SeededUnits() int       { return w.seededUnits }
func (w *World) LastStats() TickStats   { return w.last }
func (w *World) Window() StatsBucket    { return w.stats.Summarize() }
func (w *World) Resources() map[Pos]int { return w.resources.Cells() }
func (w *World) Trails() map[Pos]int    { return w.trails.Cells() }

// BotPositions returns positions in bot order.
func (w *World) BotPositions() []Pos {
	out := make([]Pos, len(w.bots))
	for i, b := range w.bots {
		out[i] = b.Pos
	}
	return out
}

// Bots returns a copy of the bots in iteration order.
func (w *World) Bots() []Bot {
	out := make([]Bot, len(w.bots))
	copy(out, w.bots)
	return out
}
