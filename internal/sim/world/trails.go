package world

// TrailStrength is the strength a freshly deposited trail cell starts at.
const TrailStrength = 5

// TrailLookup is the read-only face of the trail store handed to bots.
type TrailLookup interface {
	Has(p Pos) bool
}

// TrailStore maps cells to remaining pheromone strength.
type TrailStore struct {
	cells map[Pos]int
}

func NewTrailStore() *TrailStore {
	return &TrailStore{cells: map[Pos]int{}}
}

// Decay lowers every strength by one and drops entries at or below one.
// Runs once per tick, before that tick's deposits.
func (s *TrailStore) Decay() {
	for p, v := range s.cells {
		if v > 1 {
			s.cells[p] = v - 1
		} else {
			delete(s.cells, p)
		}
	}
}

// Deposit resets p to full strength, overriding any decayed value.
func (s *TrailStore) Deposit(p Pos) {
	s.cells[p] = TrailStrength
}

func (s *TrailStore) Has(p Pos) bool {
	_, ok := s.cells[p]
	return ok
}

func (s *TrailStore) Strength(p Pos) int { return s.cells[p] }

func (s *TrailStore) Len() int { return len(s.cells) }

// Cells returns a copy of the trail map.
func (s *TrailStore) Cells() map[Pos]int {
	out := make(map[Pos]int, len(s.cells))
	for p, v := range s.cells {
		out[p] = v
	}
	return out
}

func (s *TrailStore) set(p Pos, v int) {
	if v <= 0 {
		delete(s.cells, p)
		return
	}
	s.cells[p] = v
}
