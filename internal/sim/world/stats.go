package world

// TickStats summarises the world right after a tick.
type TickStats struct {
	Tick          uint64 `json:"tick"`
	StoredFood    int    `json:"stored_food"`
	Carrying      int    `json:"carrying"`
	ResourceCells int    `json:"resource_cells"`
	ResourceUnits int    `json:"resource_units"`
	TrailCells    int    `json:"trail_cells"`
	SeededUnits   int    `json:"seeded_units"`
}

// Accounted is every unit the run can still explain: stored, carried and on
// the field. It never exceeds SeededUnits.
func (s TickStats) Accounted() int {
	return s.StoredFood + s.Carrying + s.ResourceUnits
}

type tickCounts struct {
	pickedUp int
	stored   int
	deposits int
}

func (w *World) collectStats() TickStats {
	carrying := 0
	for _, b := range w.bots {
		if b.CarryingFood {
			carrying++
		}
	}
	return TickStats{
		Tick:          w.tick,
		StoredFood:    w.storedFood,
		Carrying:      carrying,
		ResourceCells: w.resources.Len(),
		ResourceUnits: w.resources.Total(),
		TrailCells:    w.trails.Len(),
		SeededUnits:   w.seededUnits,
	}
}

type StatsBucket struct {
	PickedUp int `json:"picked_up"`
	Stored   int `json:"stored"`
	Deposits int `json:"deposits"`
}

// WorldStats keeps a rolling window of per-tick activity in fixed buckets.
type WorldStats struct {
	bucketTicks uint64
	windowTicks uint64

	buckets []StatsBucket
	curIdx  int
	curBase uint64 // start tick (inclusive) of current bucket
}

func NewWorldStats(bucketTicks, windowTicks uint64) *WorldStats {
	if bucketTicks <= 0 {
		bucketTicks = 100
	}
	if windowTicks < bucketTicks {
		windowTicks = bucketTicks
	}
	n := int(windowTicks / bucketTicks)
	if n < 1 {
		n = 1
	}
	return &WorldStats{
		bucketTicks: bucketTicks,
		windowTicks: uint64(n) * bucketTicks,
		buckets:     make([]StatsBucket, n),
	}
}

func (s *WorldStats) rotate(nowTick uint64) {
	if s == nil {
		return
	}
	// Move forward until nowTick is in [curBase, curBase+bucketTicks).
	for nowTick >= s.curBase+s.bucketTicks {
		s.curIdx = (s.curIdx + 1) % len(s.buckets)
		s.buckets[s.curIdx] = StatsBucket{}
		s.curBase += s.bucketTicks
	}
}

func (s *WorldStats) Observe(nowTick uint64, c tickCounts) {
	if s == nil {
		return
	}
	s.rotate(nowTick)
	b := &s.buckets[s.curIdx]
	b.PickedUp += c.pickedUp
	b.Stored += c.stored
	b.Deposits += c.deposits
}

// Summarize sums the buckets currently in the window.
func (s *WorldStats) Summarize() StatsBucket {
	var out StatsBucket
	if s == nil {
		return out
	}
	for _, b := range s.buckets {
		out.PickedUp += b.PickedUp
		out.Stored += b.Stored
		out.Deposits += b.Deposits
	}
	return out
}

func (s *WorldStats) WindowTicks() uint64 {
	if s == nil {
		return 0
	}
	return s.windowTicks
}
